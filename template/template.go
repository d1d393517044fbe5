// Package template implements world template bootstrap (spec.md §6,
// §4.10 context: "new-world template=builtin.empty_universe"). A
// template is a declarative YAML description of a world's starting
// networks and agents; Bootstrap applies it to a freshly constructed
// world.World.
package template

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/world"
)

//go:embed builtin/empty_universe.yaml
var emptyUniverseYAML []byte

//go:embed builtin/minimal_system.yaml
var minimalSystemYAML []byte

// builtins maps a template name to its compiled-in YAML document.
var builtins = map[string][]byte{
	"builtin.empty_universe": emptyUniverseYAML,
	"builtin.minimal_system": minimalSystemYAML,
}

// Names lists every known builtin template, in registration order
// (used by the `template list` CLI subcommand).
func Names() []string {
	return []string{"builtin.empty_universe", "builtin.minimal_system"}
}

// Doc is a template's parsed shape.
type Doc struct {
	Name     string        `yaml:"name"`
	Networks []NetworkSpec `yaml:"networks"`
	Agents   []AgentSpec   `yaml:"agents"`
}

// NetworkSpec seeds one network at bootstrap time.
type NetworkSpec struct {
	Kind string `yaml:"kind"`
}

// AgentSpec seeds one agent at bootstrap time.
type AgentSpec struct {
	Capabilities []string `yaml:"capabilities"`
	Authority    []string `yaml:"authority"`
}

// capabilityBits and authorityBits name the handful of capability/
// authority tags a template may reference by name rather than raw mask.
var capabilityBits = map[string]bitmask.Mask{
	"survey":   1 << 0,
	"move":     1 << 1,
	"maintain": 1 << 2,
	"transfer": 1 << 3,
}

var authorityBits = map[string]bitmask.Mask{
	"basic":  1 << 0,
	"elevated": 1 << 1,
}

func maskFromTags(tags []string, table map[string]bitmask.Mask) bitmask.Mask {
	var m bitmask.Mask
	for _, t := range tags {
		m = m.Union(table[t])
	}
	return m
}

// Load parses name's compiled-in YAML document. ErrUnknownTemplate is
// returned for anything not in Names() (spec.md §6: world template
// failure maps to refusal code WD-REFUSAL-TEMPLATE).
func Load(name string) (Doc, error) {
	raw, ok := builtins[name]
	if !ok {
		return Doc{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var doc Doc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Doc{}, fmt.Errorf("template %s: %w", name, err)
	}
	return doc, nil
}

// Bootstrap applies doc's networks and agents to w in document order.
func Bootstrap(w *world.World, doc Doc) error {
	for _, n := range doc.Networks {
		if _, ok := w.NetworkCreate(n.Kind); !ok {
			return fmt.Errorf("template: network-create failed: %s", w.LastRefusal.Detail)
		}
	}
	for _, a := range doc.Agents {
		caps := maskFromTags(a.Capabilities, capabilityBits)
		auth := maskFromTags(a.Authority, authorityBits)
		if _, ok := w.AgentAdd(caps, auth); !ok {
			return fmt.Errorf("template: agent-add failed: %s", w.LastRefusal.Detail)
		}
	}
	return nil
}
