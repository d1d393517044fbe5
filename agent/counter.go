package agent

import (
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
)

// IDCounter produces command_id/plan_id values derived from a
// deterministic counter seeded by world_seed and incremented per
// emission (spec.md §4.4).
type IDCounter struct {
	next uint64
}

// NewIDCounter seeds a counter from the world seed.
func NewIDCounter(worldSeed uint64) *IDCounter {
	return &IDCounter{next: fixedpoint.SeedStream(worldSeed, 0)}
}

// Next returns the next id and advances the counter.
func (c *IDCounter) Next() ids.RefID {
	c.next++
	return ids.RefID(c.next)
}
