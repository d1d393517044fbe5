// Package field implements sparse per-layer scalar field storage
// (spec.md §4.2, component C2). A layer is created
// with fixed dimensions at world construction; reads against an absent
// layer return Unknown without allocating, writes against an absent
// layer fail.
package field

import (
	"errors"

	"github.com/dominium/dominium/fixedpoint"
)

// ErrNoSuchLayer is returned by Set when the target layer does not exist.
var ErrNoSuchLayer = errors.New("field: no such layer")

// Unknown is the sentinel value returned for cells that have not been
// observed or written.
const Unknown = fixedpoint.Q16(1<<63 - 1)

// Cell is a coordinate key within a layer.
type Cell struct {
	X, Y, Z int32
}

// Layer is a sparse scalar grid for one field kind (elevation, resource
// density, hazard intensity, ...). Dimensions bound valid coordinates but
// storage itself is sparse: unwritten cells cost nothing.
type Layer struct {
	ID     uint32
	Name   string
	DimX   int32
	DimY   int32
	DimZ   int32
	cells  map[Cell]fixedpoint.Q16
}

func newLayer(id uint32, name string, dimX, dimY, dimZ int32) *Layer {
	return &Layer{ID: id, Name: name, DimX: dimX, DimY: dimY, DimZ: dimZ, cells: make(map[Cell]fixedpoint.Q16)}
}

func (l *Layer) inBounds(x, y, z int32) bool {
	return x >= 0 && x < l.DimX && y >= 0 && y < l.DimY && z >= 0 && z < l.DimZ
}

// Storage owns a set of layers plus the objective/subjective split:
// Objective is ground truth, Subjective mirrors it but is written only
// through survey or scenario injection (spec.md §4.2).
type Storage struct {
	layers          map[uint32]*Layer
	subjectiveLayers map[uint32]*Layer
	// order preserves layer creation order for deterministic iteration,
	// e.g. a full-world dump during save.
	order []uint32
}

// NewStorage returns an empty field storage with no layers.
func NewStorage() *Storage {
	return &Storage{
		layers:           make(map[uint32]*Layer),
		subjectiveLayers: make(map[uint32]*Layer),
	}
}

// CreateLayer registers a new layer with the given dimensions. Returns
// false if the layer id already exists.
func (s *Storage) CreateLayer(id uint32, name string, dimX, dimY, dimZ int32) bool {
	if _, exists := s.layers[id]; exists {
		return false
	}
	s.layers[id] = newLayer(id, name, dimX, dimY, dimZ)
	s.subjectiveLayers[id] = newLayer(id, name, dimX, dimY, dimZ)
	s.order = append(s.order, id)
	return true
}

// HasLayer reports whether layer id exists.
func (s *Storage) HasLayer(id uint32) bool {
	_, ok := s.layers[id]
	return ok
}

// Layers returns the set of layer ids in creation order.
func (s *Storage) Layers() []uint32 {
	out := make([]uint32, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the objective value at (layer, x, y, z), or Unknown if the
// layer or cell is absent. Reading an absent layer never allocates.
func (s *Storage) Get(layer uint32, x, y, z int32) fixedpoint.Q16 {
	return get(s.layers, layer, x, y, z)
}

// GetSubjective returns the subjective (as-observed) value, or Unknown.
func (s *Storage) GetSubjective(layer uint32, x, y, z int32) fixedpoint.Q16 {
	return get(s.subjectiveLayers, layer, x, y, z)
}

func get(layers map[uint32]*Layer, layer uint32, x, y, z int32) fixedpoint.Q16 {
	l, ok := layers[layer]
	if !ok {
		return Unknown
	}
	v, ok := l.cells[Cell{x, y, z}]
	if !ok {
		return Unknown
	}
	return v
}

// Set writes the objective value at (layer, x, y, z). Returns
// ErrNoSuchLayer if the layer has not been created.
func (s *Storage) Set(layer uint32, x, y, z int32, v fixedpoint.Q16) error {
	return set(s.layers, layer, x, y, z, v)
}

// SetSubjective writes the subjective value, used by survey and scenario
// injection to materialize what an agent has observed.
func (s *Storage) SetSubjective(layer uint32, x, y, z int32, v fixedpoint.Q16) error {
	return set(s.subjectiveLayers, layer, x, y, z, v)
}

func set(layers map[uint32]*Layer, layer uint32, x, y, z int32, v fixedpoint.Q16) error {
	l, ok := layers[layer]
	if !ok {
		return ErrNoSuchLayer
	}
	l.cells[Cell{x, y, z}] = v
	return nil
}

// InBounds reports whether (x,y,z) is within the declared dimensions of
// layer. Returns false if the layer does not exist.
func (s *Storage) InBounds(layer uint32, x, y, z int32) bool {
	l, ok := s.layers[layer]
	if !ok {
		return false
	}
	return l.inBounds(x, y, z)
}
