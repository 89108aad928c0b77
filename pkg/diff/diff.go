package diff

import (
	"errors"
	"sort"
	"time"

	"github.com/permscope/permscope/pkg/perms"
)

// ErrTooFewEntities is returned when Compare is called with fewer than two
// entities. It is the caller's contract violation, not a degraded result.
var ErrTooFewEntities = errors.New("comparison requires at least 2 entities")

// objectPermissionNames fixes the enumeration order of the six object flags.
var objectPermissionNames = []string{"read", "create", "edit", "delete", "viewAll", "modifyAll"}

func objectPermission(p perms.ObjectPermissions, name string) bool {
	switch name {
	case "read":
		return p.Read
	case "create":
		return p.Create
	case "edit":
		return p.Edit
	case "delete":
		return p.Delete
	case "viewAll":
		return p.ViewAll
	case "modifyAll":
		return p.ModifyAll
	}
	return false
}

// Compare aligns the canonical documents of two or more entities and emits
// one item for every addressable path in the union of all documents,
// whether it differs or not. Output order is deterministic for a given
// entity order: categories in declaration order, names sorted
// lexicographically within each.
func Compare(entities []Entity) (*Result, error) {
	if len(entities) < 2 {
		return nil, ErrTooFewEntities
	}

	res := &Result{GeneratedAt: time.Now().UTC()}
	for _, e := range entities {
		res.Entities = append(res.Entities, EntityRef{ID: e.ID, DisplayName: e.DisplayName})
	}

	res.Differences = append(res.Differences, compareObjects(entities)...)
	res.Differences = append(res.Differences, compareSystemPermissions(entities)...)
	res.Differences = append(res.Differences, compareMembership(entities, ApexClass, "apexClasses", func(p *perms.Profile) []string { return p.ApexClasses })...)
	res.Differences = append(res.Differences, compareMembership(entities, VisualforcePage, "visualforcePages", func(p *perms.Profile) []string { return p.VisualforcePages })...)
	res.Differences = append(res.Differences, compareMembership(entities, LightningPage, "lightningPages", func(p *perms.Profile) []string { return p.LightningPages })...)
	res.Differences = append(res.Differences, compareMembership(entities, RecordType, "recordTypes", func(p *perms.Profile) []string { return p.RecordTypes })...)
	res.Differences = append(res.Differences, compareTabs(entities)...)
	res.Differences = append(res.Differences, compareApps(entities)...)

	for _, item := range res.Differences {
		res.Summary.count(item)
	}
	return res, nil
}

// compareObjects emits object-permission and field-permission items over
// the union of objects (and their fields) across all entities. An entity
// with no record for an object or field reads as all-false, never as
// missing.
func compareObjects(entities []Entity) []Item {
	objectNames := map[string]bool{}
	fieldNames := map[string]map[string]bool{}
	for _, e := range entities {
		for obj, oa := range e.Profile.Objects {
			objectNames[obj] = true
			for f := range oa.Fields {
				if fieldNames[obj] == nil {
					fieldNames[obj] = map[string]bool{}
				}
				fieldNames[obj][f] = true
			}
		}
	}

	var items []Item
	for _, obj := range sortedKeys(objectNames) {
		for _, perm := range objectPermissionNames {
			values := make(map[string]interface{}, len(entities))
			for _, e := range entities {
				var granted bool
				if oa, ok := e.Profile.Objects[obj]; ok {
					granted = objectPermission(oa.Permissions, perm)
				}
				values[e.ID] = granted
			}
			items = append(items, Item{
				Path:           "objects." + obj + ".permissions." + perm,
				Category:       ObjectPermission,
				ObjectName:     obj,
				PermissionName: perm,
				Values:         values,
				Type:           classifyValues(entities, values),
			})
		}

		for _, field := range sortedKeys(fieldNames[obj]) {
			for _, perm := range []string{"read", "edit"} {
				values := make(map[string]interface{}, len(entities))
				for _, e := range entities {
					var granted bool
					if oa, ok := e.Profile.Objects[obj]; ok {
						if fp, ok := oa.Fields[field]; ok {
							if perm == "read" {
								granted = fp.Read
							} else {
								granted = fp.Edit
							}
						}
					}
					values[e.ID] = granted
				}
				items = append(items, Item{
					Path:           "objects." + obj + ".fields." + field + "." + perm,
					Category:       FieldPermission,
					ObjectName:     obj,
					FieldName:      field,
					PermissionName: perm,
					Values:         values,
					Type:           classifyValues(entities, values),
				})
			}
		}
	}
	return items
}

func compareSystemPermissions(entities []Entity) []Item {
	names := map[string]bool{}
	for _, e := range entities {
		for name := range e.Profile.SystemPermissions {
			names[name] = true
		}
	}

	var items []Item
	for _, name := range sortedKeys(names) {
		values := make(map[string]interface{}, len(entities))
		for _, e := range entities {
			values[e.ID] = e.Profile.SystemPermissions[name]
		}
		items = append(items, Item{
			Path:           "systemPermissions." + name,
			Category:       SystemPermission,
			PermissionName: name,
			Values:         values,
			Type:           classifyValues(entities, values),
		})
	}
	return items
}

// compareMembership handles the set-valued categories where an item can be
// genuinely absent from an entity. The added/removed tie-break is relative
// to the first entity: if the first entity lacks the item it was added by a
// later one, otherwise it was removed from a later one.
func compareMembership(entities []Entity, cat Category, pathPrefix string, get func(*perms.Profile) []string) []Item {
	union := map[string]bool{}
	membership := make([]map[string]bool, len(entities))
	for i, e := range entities {
		membership[i] = map[string]bool{}
		for _, name := range get(e.Profile) {
			union[name] = true
			membership[i][name] = true
		}
	}

	var items []Item
	for _, name := range sortedKeys(union) {
		values := make(map[string]interface{}, len(entities))
		everyoneHas := true
		for i, e := range entities {
			if membership[i][name] {
				values[e.ID] = true
			} else {
				everyoneHas = false
			}
		}

		var dt Type
		switch {
		case everyoneHas:
			dt = Unchanged
		case !membership[0][name]:
			dt = Added
		default:
			dt = Removed
		}

		items = append(items, Item{
			Path:     pathPrefix + "." + name,
			Category: cat,
			Values:   values,
			Type:     dt,
		})
	}
	return items
}

func compareTabs(entities []Entity) []Item {
	names := map[string]bool{}
	for _, e := range entities {
		for tab := range e.Profile.TabVisibilities {
			names[tab] = true
		}
	}

	var items []Item
	for _, tab := range sortedKeys(names) {
		values := make(map[string]interface{}, len(entities))
		for _, e := range entities {
			if v, ok := e.Profile.TabVisibilities[tab]; ok {
				values[e.ID] = string(v)
			}
		}
		items = append(items, Item{
			Path:     "tabVisibilities." + tab,
			Category: TabVisibility,
			Values:   values,
			Type:     classifyValues(entities, values),
		})
	}
	return items
}

func compareApps(entities []Entity) []Item {
	names := map[string]bool{}
	for _, e := range entities {
		for app := range e.Profile.AppVisibilities {
			names[app] = true
		}
	}

	var items []Item
	for _, app := range sortedKeys(names) {
		for _, attr := range []string{"visible", "default"} {
			values := make(map[string]interface{}, len(entities))
			for _, e := range entities {
				if v, ok := e.Profile.AppVisibilities[app]; ok {
					if attr == "visible" {
						values[e.ID] = v.Visible
					} else {
						values[e.ID] = v.Default
					}
				}
			}
			items = append(items, Item{
				Path:           "appVisibilities." + app + "." + attr,
				Category:       AppVisibility,
				PermissionName: attr,
				Values:         values,
				Type:           classifyValues(entities, values),
			})
		}
	}
	return items
}

// classifyValues handles the value-shaped categories: unchanged when every
// entity has an equal value, changed otherwise. An entity absent from the
// values map counts as differing, since added/removed are reserved for the
// membership categories.
func classifyValues(entities []Entity, values map[string]interface{}) Type {
	if len(values) != len(entities) {
		return Changed
	}
	first := values[entities[0].ID]
	for _, e := range entities[1:] {
		if values[e.ID] != first {
			return Changed
		}
	}
	return Unchanged
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
