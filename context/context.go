// Package context carries per-world identity and collaborators (logger,
// metrics, clock) through a standard context.Context, the way the
// teacher's context package threads chain identity and a validator state
// through a VM's context.
package context

import (
	stdcontext "context"
	"time"

	"github.com/dominium/dominium/log"
	"github.com/dominium/dominium/metrics"
)

// WorldContext carries world identity and collaborators.
type WorldContext struct {
	WorldID     uint64
	Seed        uint64
	InstallRoot string
	DataRoot    string
	StartTime   time.Time

	Log     log.Logger
	Metrics *metrics.Metrics
}

type contextKeyType struct{}

var contextKey = contextKeyType{}

// WithWorldContext attaches wc to ctx.
func WithWorldContext(ctx stdcontext.Context, wc *WorldContext) stdcontext.Context {
	return stdcontext.WithValue(ctx, contextKey, wc)
}

// FromContext extracts the WorldContext, or nil if none is attached.
func FromContext(ctx stdcontext.Context) *WorldContext {
	if wc, ok := ctx.Value(contextKey).(*WorldContext); ok {
		return wc
	}
	return nil
}

// Logger returns the attached logger, or a no-op logger if none is attached.
func Logger(ctx stdcontext.Context) log.Logger {
	if wc := FromContext(ctx); wc != nil && wc.Log != nil {
		return wc.Log
	}
	return log.NewNoOp()
}

// WorldID returns the attached world id, or 0 if none is attached.
func WorldID(ctx stdcontext.Context) uint64 {
	if wc := FromContext(ctx); wc != nil {
		return wc.WorldID
	}
	return 0
}
