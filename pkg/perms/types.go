package perms

// TabVisibility is one of the three tab states Salesforce reports.
type TabVisibility string

const (
	TabDefaultOn  TabVisibility = "DefaultOn"
	TabDefaultOff TabVisibility = "DefaultOff"
	TabHidden     TabVisibility = "Hidden"
)

// PermissionSetPrefix distinguishes permission-set display names from
// profile display names in comparison output.
const PermissionSetPrefix = "PS: "

// ObjectPermissions holds the six object-level CRUD flags.
type ObjectPermissions struct {
	Read      bool `json:"read"`
	Create    bool `json:"create"`
	Edit      bool `json:"edit"`
	Delete    bool `json:"delete"`
	ViewAll   bool `json:"viewAll"`
	ModifyAll bool `json:"modifyAll"`
}

// FieldPermissions holds the two field-level flags.
type FieldPermissions struct {
	Read bool `json:"read"`
	Edit bool `json:"edit"`
}

// ObjectAccess groups one object's permissions with its field permissions.
// An object appears here if either object-level or field-level records
// reference it; in the field-only case Permissions stays all-false.
type ObjectAccess struct {
	Permissions ObjectPermissions           `json:"permissions"`
	Fields      map[string]FieldPermissions `json:"fields"`
}

// AppVisibility mirrors a profile's application visibility entry.
type AppVisibility struct {
	Visible bool `json:"visible"`
	Default bool `json:"default"`
}

// Profile is the canonical, comparison-ready document for one profile or
// permission set. All slice fields are sorted and deduplicated at
// construction so that two runs over the same upstream data produce
// identical documents.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`

	Objects           map[string]*ObjectAccess `json:"objects"`
	SystemPermissions map[string]bool          `json:"systemPermissions"`

	ApexClasses      []string `json:"apexClasses"`
	VisualforcePages []string `json:"visualforcePages"`
	LightningPages   []string `json:"lightningPages"`
	RecordTypes      []string `json:"recordTypes"`

	TabVisibilities map[string]TabVisibility `json:"tabVisibilities"`
	AppVisibilities map[string]AppVisibility `json:"appVisibilities"`
}

// VisibilityMetadata is the richer profile-mode tab/app visibility source.
// When a category has at least one entry it overrides the
// setup-entity-access fallback for that category in full.
type VisibilityMetadata struct {
	Tabs map[string]TabVisibility
	Apps map[string]AppVisibility
}
