package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/permscope/permscope/pkg/diff"
	"github.com/tidwall/gjson"
)

func sampleResult() *diff.Result {
	return &diff.Result{
		Entities: []diff.EntityRef{
			{ID: "A", DisplayName: "Profile A"},
			{ID: "B", DisplayName: "PS: Sales Ops"},
		},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Differences: []diff.Item{
			{
				Path:           "objects.Account.permissions.delete",
				Category:       diff.ObjectPermission,
				ObjectName:     "Account",
				PermissionName: "delete",
				Values:         map[string]interface{}{"A": false, "B": true},
				Type:           diff.Changed,
			},
			{
				Path:           "objects.Account.permissions.read",
				Category:       diff.ObjectPermission,
				ObjectName:     "Account",
				PermissionName: "read",
				Values:         map[string]interface{}{"A": true, "B": true},
				Type:           diff.Unchanged,
			},
			{
				Path:     "apexClasses.Foo",
				Category: diff.ApexClass,
				Values:   map[string]interface{}{"A": true},
				Type:     diff.Removed,
			},
			{
				Path:     "tabVisibilities.Orders",
				Category: diff.TabVisibility,
				Values:   map[string]interface{}{"A": "DefaultOn", "B": "Hidden"},
				Type:     diff.Changed,
			},
		},
		Summary: diff.Summary{ObjectPermissions: 1, ApexClasses: 1, TabVisibilities: 1, TotalDifferences: 3},
	}
}

func TestJSON_FiltersUnchangedByDefault(t *testing.T) {
	out, err := JSON(sampleResult(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(out)
	if n := gjson.Get(body, "differences.#").Int(); n != 3 {
		t.Fatalf("expected 3 differences after filtering, got %d", n)
	}
	if strings.Contains(body, "permissions.read") {
		t.Fatalf("unchanged item leaked into filtered output")
	}
	if got := gjson.Get(body, "summary.totalDifferences").Int(); got != 3 {
		t.Fatalf("summary must be preserved, got total %d", got)
	}
}

func TestJSON_IncludeUnchanged(t *testing.T) {
	out, err := JSON(sampleResult(), Options{IncludeUnchanged: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := gjson.Get(string(out), "differences.#").Int(); n != 4 {
		t.Fatalf("expected all 4 items, got %d", n)
	}
}

func TestJSON_NilResult(t *testing.T) {
	if _, err := JSON(nil, Options{}); err != ErrNoResult {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestCSV_Layout(t *testing.T) {
	out, err := CSV(sampleResult(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 4 { // header + 3 filtered items
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	header := rows[0]
	if header[0] != "category" || header[6] != "Profile A" || header[7] != "PS: Sales Ops" {
		t.Fatalf("unexpected header %#v", header)
	}

	del := rows[1]
	if del[1] != "objects.Account.permissions.delete" || del[6] != "false" || del[7] != "true" {
		t.Fatalf("unexpected row %#v", del)
	}

	// Membership absence renders as an empty cell.
	apex := rows[2]
	if apex[6] != "true" || apex[7] != "" {
		t.Fatalf("unexpected row %#v", apex)
	}
}

func TestCSV_NilResult(t *testing.T) {
	if _, err := CSV(nil, Options{}); err != ErrNoResult {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}
