package perms

import (
	"strings"

	"github.com/tidwall/gjson"
)

// fieldName derives the bare field name from a qualified Object.Field
// reference. A reference without a dot is kept as-is.
func fieldName(qualified string) string {
	if i := strings.Index(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// buildProfile assembles the canonical document for one owner from its
// bundle and the run's name catalog. vis is the richer profile-mode
// visibility source; nil (or empty per category) falls back to the
// setup-entity-access approximation.
func buildProfile(id, displayName string, b *Bundle, names nameCatalog, vis *VisibilityMetadata) *Profile {
	p := &Profile{
		ID:                id,
		DisplayName:       displayName,
		Objects:           make(map[string]*ObjectAccess),
		SystemPermissions: make(map[string]bool),
		TabVisibilities:   make(map[string]TabVisibility),
		AppVisibilities:   make(map[string]AppVisibility),
	}
	if b == nil {
		b = newBundle()
	}

	object := func(name string) *ObjectAccess {
		oa, ok := p.Objects[name]
		if !ok {
			oa = &ObjectAccess{Fields: make(map[string]FieldPermissions)}
			p.Objects[name] = oa
		}
		return oa
	}

	for _, rec := range b.ObjectPerms {
		oa := object(rec.Get("SobjectType").Str)
		oa.Permissions = ObjectPermissions{
			Read:      rec.Get("PermissionsRead").Bool(),
			Create:    rec.Get("PermissionsCreate").Bool(),
			Edit:      rec.Get("PermissionsEdit").Bool(),
			Delete:    rec.Get("PermissionsDelete").Bool(),
			ViewAll:   rec.Get("PermissionsViewAllRecords").Bool(),
			ModifyAll: rec.Get("PermissionsModifyAllRecords").Bool(),
		}
	}

	// Field permissions may reference objects that have no object-level
	// record; those objects still get an entry with all-false permissions.
	for _, rec := range b.FieldPerms {
		oa := object(rec.Get("SobjectType").Str)
		oa.Fields[fieldName(rec.Get("Field").Str)] = FieldPermissions{
			Read: rec.Get("PermissionsRead").Bool(),
			Edit: rec.Get("PermissionsEdit").Bool(),
		}
	}

	for name, granted := range b.SystemPerms {
		p.SystemPermissions[name] = granted
	}

	p.ApexClasses = ResolveNames(b.ApexClassIDs, names.apexClasses)
	p.VisualforcePages = ResolveNames(b.ApexPageIDs, names.apexPages)
	p.LightningPages = ResolveNames(b.FlexiPageIDs, names.flexiPages)
	p.RecordTypes = ResolveNames(b.RecordTypeIDs, names.recordTypes)

	// The richer visibility source wins in full when it has entries for a
	// category; partial merging with the access-grant fallback never
	// happens. Note an empty source is indistinguishable from a degraded
	// fetch, so emptiness always means fallback.
	if vis != nil && len(vis.Tabs) > 0 {
		for tab, v := range vis.Tabs {
			p.TabVisibilities[tab] = v
		}
	} else {
		// Access grants cannot express visibility states, so every granted
		// tab is approximated as DefaultOn.
		for _, tab := range ResolveNames(b.TabIDs, names.tabs) {
			p.TabVisibilities[tab] = TabDefaultOn
		}
	}

	if vis != nil && len(vis.Apps) > 0 {
		for app, v := range vis.Apps {
			p.AppVisibilities[app] = v
		}
	} else {
		for _, app := range ResolveNames(b.AppIDs, names.apps) {
			p.AppVisibilities[app] = AppVisibility{Visible: true, Default: false}
		}
	}

	return p
}
