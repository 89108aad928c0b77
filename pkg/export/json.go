package export

import (
	"encoding/json"

	"github.com/permscope/permscope/pkg/diff"
)

// JSON renders a comparison result as indented JSON.
func JSON(res *diff.Result, opts Options) ([]byte, error) {
	if res == nil {
		return nil, ErrNoResult
	}
	out := *res
	if !opts.IncludeUnchanged {
		out.Differences = WithoutUnchanged(res.Differences)
	}
	return json.MarshalIndent(out, "", "  ")
}
