package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/permscope/permscope/pkg/diff"
)

// CSV renders a comparison result as a flat table: one row per diff item,
// one trailing column per compared entity. Absent values render empty.
func CSV(res *diff.Result, opts Options) ([]byte, error) {
	if res == nil {
		return nil, ErrNoResult
	}

	items := res.Differences
	if !opts.IncludeUnchanged {
		items = WithoutUnchanged(items)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"category", "path", "object", "field", "permission", "diffType"}
	for _, e := range res.Entities {
		header = append(header, e.DisplayName)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, item := range items {
		row := []string{
			string(item.Category),
			item.Path,
			item.ObjectName,
			item.FieldName,
			item.PermissionName,
			string(item.Type),
		}
		for _, e := range res.Entities {
			row = append(row, formatValue(item.Values[e.ID]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
