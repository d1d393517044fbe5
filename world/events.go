package world

// Event is one structured event emitted by a successful verb (spec.md
// §6: "each successful verb emits one or more structured events into
// the ring"). Fields preserves k=v insertion order for bit-exact line
// formatting.
type Event struct {
	Seq    uint32
	Name   string
	Fields []KV
}

// KV is one key=value pair on an event line.
type KV struct {
	Key   string
	Value string
}

// EventRing is the append-only per-sink event log (spec.md §5: "Event
// logging is append-only and happens after the mutation that produced
// it"). event_seq increments per sink and is strictly increasing and
// contiguous (spec.md §8, invariant 4).
type EventRing struct {
	events []Event
	nextSeq uint32
}

// NewEventRing returns an empty ring with event_seq starting at 1.
func NewEventRing() *EventRing {
	return &EventRing{nextSeq: 1}
}

// Emit appends name with the given fields, assigning the next event_seq.
func (r *EventRing) Emit(name string, fields ...KV) Event {
	e := Event{Seq: r.nextSeq, Name: name, Fields: fields}
	r.events = append(r.events, e)
	r.nextSeq++
	return e
}

// All returns every event recorded so far, oldest first.
func (r *EventRing) All() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len reports how many events have been recorded.
func (r *EventRing) Len() int { return len(r.events) }
