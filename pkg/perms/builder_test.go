package perms

import (
	"reflect"
	"testing"
)

func TestFieldName(t *testing.T) {
	cases := map[string]string{
		"Account.Name":        "Name",
		"Account.Foo.Bar":     "Foo.Bar",
		"MalformedNoSeparator": "MalformedNoSeparator",
		"":                    "",
	}
	for in, want := range cases {
		if got := fieldName(in); got != want {
			t.Fatalf("fieldName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildProfile_FieldOnlyObjectDefaultsAllFalse(t *testing.T) {
	b := newBundle()
	b.FieldPerms = recs(`{"ParentId":"0PS1","SobjectType":"Lead","Field":"Lead.Email","PermissionsRead":true,"PermissionsEdit":false}`)

	p := buildProfile("00e1", "Standard User", b, nameCatalog{}, nil)

	oa, ok := p.Objects["Lead"]
	if !ok {
		t.Fatalf("expected Lead object entry from field permissions alone")
	}
	if oa.Permissions != (ObjectPermissions{}) {
		t.Fatalf("expected all-false object permissions, got %#v", oa.Permissions)
	}
	fp := oa.Fields["Email"]
	if !fp.Read || fp.Edit {
		t.Fatalf("expected Email read=true edit=false, got %#v", fp)
	}
}

func TestBuildProfile_ObjectPermissionsMapped(t *testing.T) {
	b := newBundle()
	b.ObjectPerms = recs(`{
		"ParentId":"0PS1","SobjectType":"Account",
		"PermissionsRead":true,"PermissionsCreate":false,"PermissionsEdit":true,
		"PermissionsDelete":false,"PermissionsViewAllRecords":true,"PermissionsModifyAllRecords":false
	}`)

	p := buildProfile("00e1", "Standard User", b, nameCatalog{}, nil)
	want := ObjectPermissions{Read: true, Edit: true, ViewAll: true}
	if p.Objects["Account"].Permissions != want {
		t.Fatalf("got %#v, want %#v", p.Objects["Account"].Permissions, want)
	}
}

func TestBuildProfile_CollectionsSortedAndResolved(t *testing.T) {
	b := newBundle()
	b.ApexClassIDs = []string{"01p2", "01p1", "01p2", "01p3"}

	names := nameCatalog{apexClasses: Lookup{"01p1": "Zeta", "01p2": "Alpha"}}
	p := buildProfile("00e1", "Standard User", b, names, nil)

	// 01p3 has no resolvable name and falls back to its raw id; duplicates
	// collapse; output is sorted.
	want := []string{"01p3", "Alpha", "Zeta"}
	if !reflect.DeepEqual(p.ApexClasses, want) {
		t.Fatalf("got %#v, want %#v", p.ApexClasses, want)
	}
}

func TestBuildProfile_RichVisibilityOverridesFallback(t *testing.T) {
	b := newBundle()
	b.TabIDs = []string{"01r1"}
	b.AppIDs = []string{"02u1"}
	names := nameCatalog{tabs: Lookup{"01r1": "Orders"}, apps: Lookup{"02u1": "Sales"}}

	vis := &VisibilityMetadata{
		Tabs: map[string]TabVisibility{"standard-Account": TabHidden},
		Apps: map[string]AppVisibility{"standard__Sales": {Visible: true, Default: true}},
	}
	p := buildProfile("00e1", "Standard User", b, names, vis)

	// The rich source wins in full; the grant-derived Orders tab must not
	// be merged in.
	if len(p.TabVisibilities) != 1 || p.TabVisibilities["standard-Account"] != TabHidden {
		t.Fatalf("expected rich tab visibility only, got %#v", p.TabVisibilities)
	}
	if len(p.AppVisibilities) != 1 || !p.AppVisibilities["standard__Sales"].Default {
		t.Fatalf("expected rich app visibility only, got %#v", p.AppVisibilities)
	}
}

func TestBuildProfile_EmptyRichSourceFallsBack(t *testing.T) {
	b := newBundle()
	b.TabIDs = []string{"01r1"}
	b.AppIDs = []string{"02u1"}
	names := nameCatalog{tabs: Lookup{"01r1": "Orders"}, apps: Lookup{"02u1": "Sales"}}

	vis := &VisibilityMetadata{
		Tabs: map[string]TabVisibility{},
		Apps: map[string]AppVisibility{},
	}
	p := buildProfile("00e1", "Standard User", b, names, vis)

	if p.TabVisibilities["Orders"] != TabDefaultOn {
		t.Fatalf("expected fallback tab DefaultOn, got %#v", p.TabVisibilities)
	}
	want := AppVisibility{Visible: true, Default: false}
	if p.AppVisibilities["Sales"] != want {
		t.Fatalf("expected fallback app %#v, got %#v", want, p.AppVisibilities)
	}
}

func TestBuildProfile_NilBundle(t *testing.T) {
	p := buildProfile("00e1", "Empty", nil, nameCatalog{}, nil)
	if len(p.Objects) != 0 || len(p.SystemPermissions) != 0 {
		t.Fatalf("expected empty document, got %#v", p)
	}
	if p.ApexClasses == nil {
		t.Fatalf("collections must be empty slices, not nil")
	}
}
