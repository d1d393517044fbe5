package saveformat

import (
	"github.com/dominium/dominium/world"
)

// ReplayHeader is the version line every replay file begins with.
const ReplayHeader = "DOMINIUM_REPLAY_V1"

// BuildReplay assembles a replay document: meta, the variant selection
// table, and every event line copied verbatim from the ring (spec.md
// §6: "Event lines are copied verbatim from the ring"). Replaying the
// event stream alone is sufficient to reconstruct refusal history
// without reading internal world state (spec.md §7).
func BuildReplay(w *world.World) Document {
	return Document{
		Header: ReplayHeader,
		Sections: []Section{
			replayMetaSection(w),
			variantsSection(w),
			eventsSection(w),
		},
	}
}

func replayMetaSection(w *world.World) Section {
	return Section{Name: "meta", Records: []Record{
		Rec("world_id", u64(w.WorldID), "seed", u64(w.Seed)),
	}}
}
