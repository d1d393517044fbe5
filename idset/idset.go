// Package idset provides a small generic set of ids.RefID, used wherever
// a domain package needs an unordered membership test (revoked grant
// ids, visited region ids) rather than an insertion-ordered
// registry.Registry. It follows the teacher's utils/set package shape:
// a map-backed set with Add/Remove/Contains/Union, and a Sorted method
// for the rare case a deterministic dump is needed.
package idset

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/dominium/dominium/ids"
)

// Set is a set of ref ids.
type Set map[ids.RefID]struct{}

// Of returns a Set initialized with elts.
func Of(elts ...ids.RefID) Set {
	s := make(Set, len(elts))
	s.Add(elts...)
	return s
}

// Add inserts every element of elts.
func (s Set) Add(elts ...ids.RefID) {
	for _, e := range elts {
		s[e] = struct{}{}
	}
}

// Remove deletes every element of elts, if present.
func (s Set) Remove(elts ...ids.RefID) {
	for _, e := range elts {
		delete(s, e)
	}
}

// Contains reports whether id is a member.
func (s Set) Contains(id ids.RefID) bool {
	_, ok := s[id]
	return ok
}

// Union adds every element of other into s.
func (s Set) Union(other Set) {
	for e := range other {
		s[e] = struct{}{}
	}
}

// Len reports the set's size.
func (s Set) Len() int { return len(s) }

// Sorted returns every member sorted ascending, for deterministic
// output (e.g. a save file or a diagnostic dump) where map iteration
// order would otherwise vary.
func (s Set) Sorted() []ids.RefID {
	out := maps.Keys(s)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
