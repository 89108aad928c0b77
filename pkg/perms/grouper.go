package perms

import (
	"strings"

	"github.com/tidwall/gjson"
)

// systemPermissionPrefix is the attribute prefix marking system permission
// flags on a PermissionSet record (e.g. PermissionsApiEnabled).
const systemPermissionPrefix = "Permissions"

// SetupEntityAccess type tags. The set is closed: records carrying any
// other tag are dropped.
const (
	setupTypeApexClass  = "ApexClass"
	setupTypeApexPage   = "ApexPage"
	setupTypeRecordType = "RecordType"
	setupTypeTabSet     = "TabSet" // a TabSet grant denotes a custom application, not a tab
	setupTypeCustomTab  = "CustomTab"
	setupTypeFlexiPage  = "FlexiPage"
)

// RawRecords carries the wave-one bulk query results for one normalization
// run, before they are partitioned per owner.
type RawRecords struct {
	ObjectPermissions []gjson.Result
	FieldPermissions  []gjson.Result
	PermissionSets    []gjson.Result
	SetupEntityAccess []gjson.Result
}

// Bundle collects one owner's share of the raw record sets.
type Bundle struct {
	ObjectPerms []gjson.Result
	FieldPerms  []gjson.Result

	// SystemPerms is the flattened boolean permission map, keyed by the
	// permission short name with the Permissions prefix stripped.
	SystemPerms map[string]bool

	ApexClassIDs  []string
	ApexPageIDs   []string
	RecordTypeIDs []string
	TabIDs        []string
	AppIDs        []string
	FlexiPageIDs  []string
}

func newBundle() *Bundle {
	return &Bundle{SystemPerms: make(map[string]bool)}
}

// GroupByOwner partitions the flat record sets per owner. owners maps a
// permission-set id to the owner id the caller requested (the profile id in
// profile mode, the permission-set id itself otherwise). Records whose
// parent has no owner mapping belong to an unrequested owner and are
// dropped.
func GroupByOwner(raw RawRecords, owners map[string]string) map[string]*Bundle {
	bundles := make(map[string]*Bundle, len(owners))
	get := func(parentID string) *Bundle {
		ownerID, ok := owners[parentID]
		if !ok {
			return nil
		}
		b, ok := bundles[ownerID]
		if !ok {
			b = newBundle()
			bundles[ownerID] = b
		}
		return b
	}

	for _, rec := range raw.ObjectPermissions {
		if b := get(rec.Get("ParentId").Str); b != nil {
			b.ObjectPerms = append(b.ObjectPerms, rec)
		}
	}

	for _, rec := range raw.FieldPermissions {
		if b := get(rec.Get("ParentId").Str); b != nil {
			b.FieldPerms = append(b.FieldPerms, rec)
		}
	}

	// The PermissionSet record itself carries the system permission flags;
	// its own Id is the parent key.
	for _, rec := range raw.PermissionSets {
		b := get(rec.Get("Id").Str)
		if b == nil {
			continue
		}
		rec.ForEach(func(key, value gjson.Result) bool {
			name := key.Str
			if !strings.HasPrefix(name, systemPermissionPrefix) {
				return true
			}
			if value.Type != gjson.True && value.Type != gjson.False {
				return true
			}
			b.SystemPerms[strings.TrimPrefix(name, systemPermissionPrefix)] = value.Bool()
			return true
		})
	}

	for _, rec := range raw.SetupEntityAccess {
		b := get(rec.Get("ParentId").Str)
		if b == nil {
			continue
		}
		entityID := rec.Get("SetupEntityId").Str
		switch rec.Get("SetupEntityType").Str {
		case setupTypeApexClass:
			b.ApexClassIDs = append(b.ApexClassIDs, entityID)
		case setupTypeApexPage:
			b.ApexPageIDs = append(b.ApexPageIDs, entityID)
		case setupTypeRecordType:
			b.RecordTypeIDs = append(b.RecordTypeIDs, entityID)
		case setupTypeTabSet:
			b.AppIDs = append(b.AppIDs, entityID)
		case setupTypeCustomTab:
			b.TabIDs = append(b.TabIDs, entityID)
		case setupTypeFlexiPage:
			b.FlexiPageIDs = append(b.FlexiPageIDs, entityID)
		}
	}

	return bundles
}
