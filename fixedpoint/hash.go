package fixedpoint

const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// FNV1a64 hashes a byte stream with FNV-1a-64.
func FNV1a64(data []byte) uint64 {
	h := fnvOffset64
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return h
}

// FNV1a64Seeded hashes data starting from an explicit accumulator, so
// callers can fold multiple fields into one hash without concatenating
// byte slices (used by risk.Capsule hashing and save-file record hashing).
func FNV1a64Seeded(seed uint64, data []byte) uint64 {
	h := seed
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return h
}

// HashString32 reduces the seeded FNV-1a-64 hash of s to 32 bits, per
// spec.md §4.1 ("string→u32 hash uses the same seeded FNV reduced to 32
// bits").
func HashString32(seed uint64, s string) uint32 {
	h := FNV1a64Seeded(seed, []byte(s))
	return uint32(h ^ (h >> 32))
}

// SplitMix64 is a single step of the splitmix64 generator: given a state
// word, returns the next state and the output word derived from it. The
// caller owns the state between calls.
func SplitMix64(state uint64) (nextState uint64, output uint64) {
	nextState = state + 0x9E3779B97F4A7C15
	z := nextState
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return nextState, z
}

// SeedStream returns a deterministic PRNG seed for a per-command or
// per-field RNG stream, mixing a world seed with a discriminator (a
// field_id, command counter, or perturb seed XOR tick per spec.md §4.10).
func SeedStream(worldSeed, discriminator uint64) uint64 {
	_, out := SplitMix64(worldSeed ^ discriminator)
	return out
}
