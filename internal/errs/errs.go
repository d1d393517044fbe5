// Package errs provides a small error-accumulator for handlers that fold
// several fallible sub-steps into one aggregate outcome (e.g. a bulk
// revoke over many grant ids), adapted from the teacher's
// utils/wrappers.Errs.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Errs collects zero or more errors from a sequence of fallible steps.
type Errs struct {
	errs []error
}

// Add appends err if it is non-nil.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.errs = append(e.errs, err)
}

// Errored reports whether any error has been added.
func (e *Errs) Errored() bool {
	return len(e.errs) > 0
}

// Len reports how many errors have been added.
func (e *Errs) Len() int {
	return len(e.errs)
}

// Err folds the accumulated errors into a single error: nil if none,
// the error itself if exactly one, otherwise a joined summary.
func (e *Errs) Err() error {
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.New(e.String())
	}
}

// String renders every accumulated error, one per line.
func (e *Errs) String() string {
	if len(e.errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(e.errs)))
	b.WriteString(" errors occurred:")
	for _, err := range e.errs {
		b.WriteString("\n\t* ")
		b.WriteString(err.Error())
	}
	return b.String()
}
