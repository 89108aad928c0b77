package salesforce

import (
	"context"

	"github.com/permscope/permscope/internal/utils"
	"github.com/tidwall/gjson"
)

// idBatchSize bounds the number of ids per IN (...) clause. FIELDS(ALL)
// queries additionally cap at 200 rows, so that is the ceiling everywhere.
const idBatchSize = 200

// queryBatched runs one query per id batch and concatenates the records.
func (c *Client) queryBatched(ctx context.Context, ids []string, build func(in string) string) ([]gjson.Result, error) {
	var records []gjson.Result
	for _, batch := range utils.Chunk(ids, idBatchSize) {
		recs, err := c.Query(ctx, build(soqlIn(batch)))
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// Profiles fetches the basic records for the requested profile ids.
func (c *Client) Profiles(ctx context.Context, ids []string) ([]gjson.Result, error) {
	return c.queryBatched(ctx, ids, func(in string) string {
		return "SELECT Id, Name FROM Profile WHERE Id IN " + in
	})
}

// OwnedPermissionSets resolves each profile to its implicitly-owned
// permission set record.
func (c *Client) OwnedPermissionSets(ctx context.Context, profileIDs []string) ([]gjson.Result, error) {
	return c.queryBatched(ctx, profileIDs, func(in string) string {
		return "SELECT Id, ProfileId FROM PermissionSet WHERE IsOwnedByProfile = true AND ProfileId IN " + in
	})
}

// PermissionSetsBasic fetches id and label for the requested permission sets.
func (c *Client) PermissionSetsBasic(ctx context.Context, ids []string) ([]gjson.Result, error) {
	return c.queryBatched(ctx, ids, func(in string) string {
		return "SELECT Id, Label FROM PermissionSet WHERE Id IN " + in
	})
}

// ObjectPermissions fetches the object-level permission records owned by
// the given permission sets.
func (c *Client) ObjectPermissions(ctx context.Context, parentIDs []string) ([]gjson.Result, error) {
	return c.queryBatched(ctx, parentIDs, func(in string) string {
		return "SELECT ParentId, SobjectType, PermissionsRead, PermissionsCreate, PermissionsEdit, " +
			"PermissionsDelete, PermissionsViewAllRecords, PermissionsModifyAllRecords " +
			"FROM ObjectPermissions WHERE ParentId IN " + in
	})
}

// FieldPermissions fetches the field-level permission records owned by the
// given permission sets.
func (c *Client) FieldPermissions(ctx context.Context, parentIDs []string) ([]gjson.Result, error) {
	return c.queryBatched(ctx, parentIDs, func(in string) string {
		return "SELECT ParentId, SobjectType, Field, PermissionsRead, PermissionsEdit " +
			"FROM FieldPermissions WHERE ParentId IN " + in
	})
}

// PermissionSetRecords fetches the full permission set rows, whose
// Permissions* boolean columns carry the system permission flags. The
// column set varies per org edition, so FIELDS(ALL) is used instead of an
// explicit list.
func (c *Client) PermissionSetRecords(ctx context.Context, ids []string) ([]gjson.Result, error) {
	return c.queryBatched(ctx, ids, func(in string) string {
		return "SELECT FIELDS(ALL) FROM PermissionSet WHERE Id IN " + in + " LIMIT 200"
	})
}

// SetupEntityAccess fetches the generic access-grant records owned by the
// given permission sets.
func (c *Client) SetupEntityAccess(ctx context.Context, parentIDs []string) ([]gjson.Result, error) {
	return c.queryBatched(ctx, parentIDs, func(in string) string {
		return "SELECT ParentId, SetupEntityId, SetupEntityType FROM SetupEntityAccess WHERE ParentId IN " + in
	})
}

// LightningPageNames fetches the org-wide Lightning page catalog. Lightning
// pages are not owner-scoped, so this is unparameterized.
func (c *Client) LightningPageNames(ctx context.Context) (map[string]string, error) {
	recs, err := c.ToolingQuery(ctx, "SELECT Id, MasterLabel FROM FlexiPage")
	if err != nil {
		return nil, err
	}
	return toNameMap(recs, "Id", "MasterLabel"), nil
}

// ApexClassNames resolves apex class ids to names. Only the referenced ids
// are queried to bound query size.
func (c *Client) ApexClassNames(ctx context.Context, ids []string) (map[string]string, error) {
	recs, err := c.queryBatched(ctx, ids, func(in string) string {
		return "SELECT Id, Name FROM ApexClass WHERE Id IN " + in
	})
	if err != nil {
		return nil, err
	}
	return toNameMap(recs, "Id", "Name"), nil
}

// ApexPageNames resolves Visualforce page ids to names.
func (c *Client) ApexPageNames(ctx context.Context, ids []string) (map[string]string, error) {
	recs, err := c.queryBatched(ctx, ids, func(in string) string {
		return "SELECT Id, Name FROM ApexPage WHERE Id IN " + in
	})
	if err != nil {
		return nil, err
	}
	return toNameMap(recs, "Id", "Name"), nil
}

// RecordTypeNames fetches the full record type catalog; its volume is
// bounded by org metadata limits.
func (c *Client) RecordTypeNames(ctx context.Context) (map[string]string, error) {
	recs, err := c.Query(ctx, "SELECT Id, Name, SobjectType FROM RecordType")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(recs))
	for _, rec := range recs {
		names[rec.Get("Id").Str] = rec.Get("SobjectType").Str + "." + rec.Get("Name").Str
	}
	return names, nil
}

// TabNames fetches the custom tab catalog.
func (c *Client) TabNames(ctx context.Context) (map[string]string, error) {
	recs, err := c.ToolingQuery(ctx, "SELECT Id, DeveloperName FROM CustomTab")
	if err != nil {
		return nil, err
	}
	return toNameMap(recs, "Id", "DeveloperName"), nil
}

// AppNames fetches the custom application catalog.
func (c *Client) AppNames(ctx context.Context) (map[string]string, error) {
	recs, err := c.ToolingQuery(ctx, "SELECT Id, Label FROM CustomApplication")
	if err != nil {
		return nil, err
	}
	return toNameMap(recs, "Id", "Label"), nil
}

// ListProfiles returns all profiles in the org, ordered by name.
func (c *Client) ListProfiles(ctx context.Context) ([]gjson.Result, error) {
	return c.Query(ctx, "SELECT Id, Name FROM Profile ORDER BY Name")
}

// ListPermissionSets returns all standalone permission sets (the implicit
// profile-owned ones are excluded), ordered by label.
func (c *Client) ListPermissionSets(ctx context.Context) ([]gjson.Result, error) {
	return c.Query(ctx, "SELECT Id, Label FROM PermissionSet WHERE IsOwnedByProfile = false ORDER BY Label")
}

func toNameMap(recs []gjson.Result, idKey, nameKey string) map[string]string {
	names := make(map[string]string, len(recs))
	for _, rec := range recs {
		names[rec.Get(idKey).Str] = rec.Get(nameKey).Str
	}
	return names
}
