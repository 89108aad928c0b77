package diff

import (
	"time"

	"github.com/permscope/permscope/pkg/perms"
)

// Type classifies a single diff item.
type Type string

const (
	Added     Type = "added"
	Removed   Type = "removed"
	Changed   Type = "changed"
	Unchanged Type = "unchanged"
)

// Category is the classification bucket a diff item belongs to.
type Category string

const (
	ObjectPermission Category = "objectPermission"
	FieldPermission  Category = "fieldPermission"
	SystemPermission Category = "systemPermission"
	ApexClass        Category = "apexClass"
	VisualforcePage  Category = "visualforcePage"
	LightningPage    Category = "lightningPage"
	RecordType       Category = "recordType"
	TabVisibility    Category = "tabVisibility"
	AppVisibility    Category = "appVisibility"
)

// Entity is one comparison participant.
type Entity struct {
	ID          string
	DisplayName string
	Profile     *perms.Profile
}

// EntityRef identifies a compared entity in the result.
type EntityRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Item is one reported unit of difference. Values maps each compared
// entity's id to its value at Path; entities with no value at the path are
// absent from the map. Items are never mutated after Compare returns.
type Item struct {
	Path           string                 `json:"path"`
	Category       Category               `json:"category"`
	ObjectName     string                 `json:"objectName,omitempty"`
	FieldName      string                 `json:"fieldName,omitempty"`
	PermissionName string                 `json:"permissionName,omitempty"`
	Values         map[string]interface{} `json:"values"`
	Type           Type                   `json:"diffType"`
}

// Summary tallies non-unchanged items per category.
type Summary struct {
	ObjectPermissions int `json:"objectPermissions"`
	FieldPermissions  int `json:"fieldPermissions"`
	SystemPermissions int `json:"systemPermissions"`
	ApexClasses       int `json:"apexClasses"`
	VisualforcePages  int `json:"visualforcePages"`
	LightningPages    int `json:"lightningPages"`
	RecordTypes       int `json:"recordTypes"`
	TabVisibilities   int `json:"tabVisibilities"`
	AppVisibilities   int `json:"appVisibilities"`
	TotalDifferences  int `json:"totalDifferences"`
}

func (s *Summary) count(item Item) {
	if item.Type == Unchanged {
		return
	}
	switch item.Category {
	case ObjectPermission:
		s.ObjectPermissions++
	case FieldPermission:
		s.FieldPermissions++
	case SystemPermission:
		s.SystemPermissions++
	case ApexClass:
		s.ApexClasses++
	case VisualforcePage:
		s.VisualforcePages++
	case LightningPage:
		s.LightningPages++
	case RecordType:
		s.RecordTypes++
	case TabVisibility:
		s.TabVisibilities++
	case AppVisibility:
		s.AppVisibilities++
	}
	s.TotalDifferences++
}

// Result is the complete output of one comparison.
type Result struct {
	Entities    []EntityRef `json:"entities"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Differences []Item      `json:"differences"`
	Summary     Summary     `json:"summary"`
}
