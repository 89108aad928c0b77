package diff

import (
	"reflect"
	"testing"

	"github.com/permscope/permscope/pkg/perms"
)

func entity(id, name string, p *perms.Profile) Entity {
	p.ID = id
	p.DisplayName = name
	return Entity{ID: id, DisplayName: name, Profile: p}
}

func emptyProfile() *perms.Profile {
	return &perms.Profile{
		Objects:           map[string]*perms.ObjectAccess{},
		SystemPermissions: map[string]bool{},
		TabVisibilities:   map[string]perms.TabVisibility{},
		AppVisibilities:   map[string]perms.AppVisibility{},
	}
}

func findItem(t *testing.T, items []Item, path string) Item {
	t.Helper()
	for _, item := range items {
		if item.Path == path {
			return item
		}
	}
	t.Fatalf("no item at path %q", path)
	return Item{}
}

func TestCompare_RequiresTwoEntities(t *testing.T) {
	if _, err := Compare([]Entity{entity("a", "A", emptyProfile())}); err != ErrTooFewEntities {
		t.Fatalf("expected ErrTooFewEntities, got %v", err)
	}
	if _, err := Compare(nil); err == nil {
		t.Fatalf("expected error for empty entity list")
	}
}

func TestCompare_ObjectPermissionChange(t *testing.T) {
	a := emptyProfile()
	a.Objects["Account"] = &perms.ObjectAccess{
		Permissions: perms.ObjectPermissions{Read: true, Delete: false},
		Fields:      map[string]perms.FieldPermissions{},
	}
	b := emptyProfile()
	b.Objects["Account"] = &perms.ObjectAccess{
		Permissions: perms.ObjectPermissions{Read: true, Delete: true},
		Fields:      map[string]perms.FieldPermissions{},
	}

	res, err := Compare([]Entity{entity("A", "Profile A", a), entity("B", "Profile B", b)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	del := findItem(t, res.Differences, "objects.Account.permissions.delete")
	if del.Type != Changed {
		t.Fatalf("expected delete changed, got %s", del.Type)
	}
	wantValues := map[string]interface{}{"A": false, "B": true}
	if !reflect.DeepEqual(del.Values, wantValues) {
		t.Fatalf("got values %#v, want %#v", del.Values, wantValues)
	}
	if del.ObjectName != "Account" || del.PermissionName != "delete" {
		t.Fatalf("unexpected item metadata: %#v", del)
	}

	// read is equal but must still be enumerated, as unchanged.
	read := findItem(t, res.Differences, "objects.Account.permissions.read")
	if read.Type != Unchanged {
		t.Fatalf("expected read unchanged, got %s", read.Type)
	}

	if res.Summary.ObjectPermissions != 1 || res.Summary.TotalDifferences != 1 {
		t.Fatalf("unexpected summary %#v", res.Summary)
	}
}

func TestCompare_MissingObjectReadsAsFalse(t *testing.T) {
	a := emptyProfile()
	a.Objects["Account"] = &perms.ObjectAccess{
		Permissions: perms.ObjectPermissions{Read: true},
		Fields:      map[string]perms.FieldPermissions{},
	}
	b := emptyProfile()

	res, err := Compare([]Entity{entity("A", "A", a), entity("B", "B", b)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	read := findItem(t, res.Differences, "objects.Account.permissions.read")
	if read.Type != Changed {
		t.Fatalf("expected changed, got %s", read.Type)
	}
	if v, ok := read.Values["B"]; !ok || v != false {
		t.Fatalf("absent object permission must read as false, got %#v", read.Values)
	}

	create := findItem(t, res.Differences, "objects.Account.permissions.create")
	if create.Type != Unchanged {
		t.Fatalf("false-vs-default-false must be unchanged, got %s", create.Type)
	}
}

func TestCompare_FieldPermissions(t *testing.T) {
	a := emptyProfile()
	a.Objects["Account"] = &perms.ObjectAccess{
		Fields: map[string]perms.FieldPermissions{"Industry": {Read: true, Edit: true}},
	}
	b := emptyProfile()
	b.Objects["Account"] = &perms.ObjectAccess{
		Fields: map[string]perms.FieldPermissions{"Industry": {Read: true, Edit: false}},
	}

	res, err := Compare([]Entity{entity("A", "A", a), entity("B", "B", b)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edit := findItem(t, res.Differences, "objects.Account.fields.Industry.edit")
	if edit.Type != Changed || edit.FieldName != "Industry" || edit.ObjectName != "Account" {
		t.Fatalf("unexpected item %#v", edit)
	}
	read := findItem(t, res.Differences, "objects.Account.fields.Industry.read")
	if read.Type != Unchanged {
		t.Fatalf("expected read unchanged, got %s", read.Type)
	}
}

func TestCompare_MembershipTieBreak(t *testing.T) {
	withApex := emptyProfile()
	withApex.ApexClasses = []string{"Foo"}
	without := emptyProfile()

	// First entity has it, a later one lacks it: removed.
	res, err := Compare([]Entity{entity("A", "A", withApex), entity("B", "B", without)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := findItem(t, res.Differences, "apexClasses.Foo")
	if item.Type != Removed {
		t.Fatalf("expected removed, got %s", item.Type)
	}
	if _, ok := item.Values["B"]; ok {
		t.Fatalf("entity without the class must be absent from values, got %#v", item.Values)
	}

	// Converse: added.
	withApex2 := emptyProfile()
	withApex2.ApexClasses = []string{"Foo"}
	res, err = Compare([]Entity{entity("A", "A", emptyProfile()), entity("B", "B", withApex2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item := findItem(t, res.Differences, "apexClasses.Foo"); item.Type != Added {
		t.Fatalf("expected added, got %s", item.Type)
	}
}

func TestCompare_MembershipThreeWayUsesFirstVersusRest(t *testing.T) {
	has := emptyProfile()
	has.RecordTypes = []string{"Account.Business"}
	has2 := emptyProfile()
	has2.RecordTypes = []string{"Account.Business"}
	lacks := emptyProfile()

	// First has it, one of the later two lacks it: removed.
	res, err := Compare([]Entity{entity("A", "A", has), entity("B", "B", lacks), entity("C", "C", has2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item := findItem(t, res.Differences, "recordTypes.Account.Business"); item.Type != Removed {
		t.Fatalf("expected removed, got %s", item.Type)
	}
}

func TestCompare_TabAndAppVisibility(t *testing.T) {
	a := emptyProfile()
	a.TabVisibilities["Orders"] = perms.TabDefaultOn
	a.AppVisibilities["Sales"] = perms.AppVisibility{Visible: true, Default: true}
	b := emptyProfile()
	b.TabVisibilities["Orders"] = perms.TabHidden
	b.AppVisibilities["Sales"] = perms.AppVisibility{Visible: true, Default: false}

	res, err := Compare([]Entity{entity("A", "A", a), entity("B", "B", b)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tab := findItem(t, res.Differences, "tabVisibilities.Orders")
	if tab.Type != Changed || tab.Values["A"] != "DefaultOn" || tab.Values["B"] != "Hidden" {
		t.Fatalf("unexpected tab item %#v", tab)
	}
	visible := findItem(t, res.Differences, "appVisibilities.Sales.visible")
	if visible.Type != Unchanged {
		t.Fatalf("expected visible unchanged, got %s", visible.Type)
	}
	def := findItem(t, res.Differences, "appVisibilities.Sales.default")
	if def.Type != Changed {
		t.Fatalf("expected default changed, got %s", def.Type)
	}
}

func TestCompare_SystemPermissionAbsentReadsFalse(t *testing.T) {
	a := emptyProfile()
	a.SystemPermissions["ApiEnabled"] = true
	b := emptyProfile()

	res, err := Compare([]Entity{entity("A", "A", a), entity("B", "B", b)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := findItem(t, res.Differences, "systemPermissions.ApiEnabled")
	if item.Type != Changed || item.Values["B"] != false {
		t.Fatalf("unexpected item %#v", item)
	}
}

func TestCompare_SummaryConsistency(t *testing.T) {
	a := emptyProfile()
	a.Objects["Account"] = &perms.ObjectAccess{
		Permissions: perms.ObjectPermissions{Read: true},
		Fields:      map[string]perms.FieldPermissions{"Industry": {Read: true}},
	}
	a.SystemPermissions["ApiEnabled"] = true
	a.ApexClasses = []string{"Foo"}
	a.TabVisibilities["Orders"] = perms.TabDefaultOn
	b := emptyProfile()

	res, err := Compare([]Entity{entity("A", "A", a), entity("B", "B", b)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed := 0
	for _, item := range res.Differences {
		if item.Type != Unchanged {
			changed++
		}
	}
	s := res.Summary
	perCategory := s.ObjectPermissions + s.FieldPermissions + s.SystemPermissions +
		s.ApexClasses + s.VisualforcePages + s.LightningPages + s.RecordTypes +
		s.TabVisibilities + s.AppVisibilities
	if s.TotalDifferences != perCategory {
		t.Fatalf("total %d != per-category sum %d", s.TotalDifferences, perCategory)
	}
	if s.TotalDifferences != changed {
		t.Fatalf("total %d != non-unchanged item count %d", s.TotalDifferences, changed)
	}
}

func TestCompare_Deterministic(t *testing.T) {
	build := func() *perms.Profile {
		p := emptyProfile()
		p.Objects["Account"] = &perms.ObjectAccess{Fields: map[string]perms.FieldPermissions{"A": {}, "B": {}, "C": {}}}
		p.Objects["Lead"] = &perms.ObjectAccess{Fields: map[string]perms.FieldPermissions{}}
		p.SystemPermissions["X"] = true
		p.SystemPermissions["Y"] = false
		p.ApexClasses = []string{"A", "B"}
		return p
	}

	first, err := Compare([]Entity{entity("A", "A", build()), entity("B", "B", emptyProfile())})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Compare([]Entity{entity("A", "A", build()), entity("B", "B", emptyProfile())})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first.Differences, again.Differences) {
			t.Fatalf("difference order must not depend on map iteration order")
		}
	}
}
