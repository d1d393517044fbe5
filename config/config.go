// Package config holds typed configuration for a Dominium world process:
// which template to bootstrap from, where to discover templates on disk,
// and runtime knobs for logging/metrics/playtest. It follows the shape of
// a consensus-parameters package — typed struct, DefaultX constructor,
// Valid() error — generalized to this simulation's own knobs.
package config

import (
	"errors"
	"time"
)

var (
	// ErrSeedZero is returned when a world is constructed with seed 0;
	// zero is reserved to mean "unset" in save files and templates.
	ErrSeedZero = errors.New("config: world_seed must be non-zero")
	// ErrTemplateEmpty is returned when no template name is given.
	ErrTemplateEmpty = errors.New("config: template name must not be empty")
	// ErrBudgetTooLow is returned when a non-zero compute/risk budget is
	// configured below the minimum the resolver can make progress with.
	ErrBudgetTooLow = errors.New("config: budget must be 0 (unlimited) or >= 1")
)

// WorldConfig describes how a world is bootstrapped.
type WorldConfig struct {
	// Seed is the world_seed driving the PRNG streams (fixedpoint.SplitMix64)
	// and the deterministic latent-field materialization (process package).
	Seed uint64
	// Template is the template name, e.g. "builtin.empty_universe".
	Template string
	// InstallRoot and DataRoot override DOM_INSTALL_ROOT / DOM_DATA_ROOT
	// for template discovery (spec.md §6). Empty means "use env/CWD".
	InstallRoot string
	DataRoot    string
}

// DefaultWorldConfig returns a WorldConfig for the minimal builtin template.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Seed:     1,
		Template: "builtin.empty_universe",
	}
}

// Valid validates the world configuration.
func (c WorldConfig) Valid() error {
	if c.Seed == 0 {
		return ErrSeedZero
	}
	if c.Template == "" {
		return ErrTemplateEmpty
	}
	return nil
}

// RuntimeConfig holds process-wide runtime knobs not tied to any one world.
type RuntimeConfig struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
	// MetricsAddr is the bind address for the prometheus scrape endpoint,
	// empty disables it.
	MetricsAddr string
	// TickBudget is a per-agent compute_budget default. world.AgentAdd
	// does not read it (it assigns a budget of 1), and the agent pipeline
	// skips any agent whose budget is 0.
	TickBudget uint32
	// RiskBudget is the default resolve() budget handed to risk.Resolve
	// when a verb invocation does not specify one explicitly.
	RiskBudget uint64
	// BackoffTicks is BACKOFF from spec.md §4.5: how many ticks a failed
	// goal defers before becoming eligible again.
	BackoffTicks uint64
	// PlaytestSpeed is the initial playtest speed multiplier. cmd/dominium
	// does not read it; ticks advance only on an explicit simulate verb.
	PlaytestSpeed float64
	// TickInterval is a wall-clock delay between automatic ticks.
	// cmd/dominium's run loop does not read it and runs no automatic ticks.
	TickInterval time.Duration
}

// DefaultRuntimeConfig returns sane defaults for local operator use.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		LogLevel:      "info",
		MetricsAddr:   "",
		TickBudget:    0,
		RiskBudget:    1024,
		BackoffTicks:  4,
		PlaytestSpeed: 1.0,
		TickInterval:  100 * time.Millisecond,
	}
}

// Valid validates the runtime configuration.
func (c RuntimeConfig) Valid() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("config: log level must be one of debug,info,warn,error")
	}
	if c.PlaytestSpeed <= 0 {
		return errors.New("config: playtest speed must be > 0")
	}
	return nil
}
