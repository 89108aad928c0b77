package export

import (
	"errors"

	"github.com/permscope/permscope/pkg/diff"
)

// ErrNoResult is returned when a nil comparison result is exported.
var ErrNoResult = errors.New("no comparison result to export")

// Options controls export rendering. The diff engine always enumerates
// unchanged paths; suppressing them is an export concern.
type Options struct {
	IncludeUnchanged bool
}

// WithoutUnchanged filters unchanged items out of a difference sequence,
// preserving order.
func WithoutUnchanged(items []diff.Item) []diff.Item {
	out := make([]diff.Item, 0, len(items))
	for _, item := range items {
		if item.Type != diff.Unchanged {
			out = append(out, item)
		}
	}
	return out
}
