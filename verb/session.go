package verb

import (
	stdcontext "context"
	"strconv"

	"github.com/dominium/dominium/template"
	"github.com/dominium/dominium/world"
)

// Session holds the single active world a verb stream operates against,
// plus the next world id to hand out. cmd/dominium's run loop drives it
// one line at a time; the replay subcommand does not use it.
type Session struct {
	ctx     stdcontext.Context
	World   *world.World
	nextID  uint64
}

// NewSession returns a session with no active world.
func NewSession(ctx stdcontext.Context) *Session {
	return &Session{ctx: ctx, nextID: 1}
}

// Dispatch handles new-world itself (it owns world construction/
// replacement) and delegates every other verb to the active world via
// package-level Dispatch.
func (s *Session) Dispatch(line string) Result {
	l := Parse(line)
	if l.Verb == "new-world" {
		return s.newWorld(l)
	}
	if s.World == nil {
		return Result{Status: StatusUnavailable}
	}
	return Dispatch(s.World, line)
}

func (s *Session) newWorld(l Line) Result {
	seed, err := strconv.ParseUint(l.Args["seed"], 10, 64)
	if err != nil || seed == 0 {
		return Result{Status: StatusUsage}
	}
	templateName := l.Args["template"]
	if templateName == "" {
		templateName = "builtin.empty_universe"
	}
	doc, err := template.Load(templateName)
	if err != nil {
		return Result{Status: StatusUnavailable}
	}

	w := world.New(s.ctx, s.nextID, seed)
	s.nextID++
	if err := template.Bootstrap(w, doc); err != nil {
		return Result{Status: StatusUnavailable}
	}
	before := w.Events.Len()
	w.Events.Emit("world.new",
		world.KV{Key: "template", Value: templateName},
		world.KV{Key: "seed", Value: strconv.FormatUint(seed, 10)})
	s.World = w
	return Result{Status: StatusOK, Events: eventsSince(w, before)}
}
