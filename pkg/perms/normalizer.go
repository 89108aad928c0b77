package perms

import (
	"context"
	"fmt"
	"sync"

	"github.com/permscope/permscope/internal/utils"
	"github.com/tidwall/gjson"
)

// Source is the bulk-query surface of the CRM metadata API that
// normalization depends on. All record-returning calls yield flat records
// parsed from the query response. Implementations are expected to fail with
// a transport error; retries and partial-failure handling live here, not in
// the source.
type Source interface {
	// Basic records and owner resolution.
	Profiles(ctx context.Context, ids []string) ([]gjson.Result, error)
	OwnedPermissionSets(ctx context.Context, profileIDs []string) ([]gjson.Result, error)
	PermissionSetsBasic(ctx context.Context, ids []string) ([]gjson.Result, error)

	// Wave one: the five bulk permission-data queries.
	ObjectPermissions(ctx context.Context, parentIDs []string) ([]gjson.Result, error)
	FieldPermissions(ctx context.Context, parentIDs []string) ([]gjson.Result, error)
	PermissionSetRecords(ctx context.Context, ids []string) ([]gjson.Result, error)
	SetupEntityAccess(ctx context.Context, parentIDs []string) ([]gjson.Result, error)
	LightningPageNames(ctx context.Context) (map[string]string, error)

	// Wave two: name resolution for the entity ids discovered in wave one.
	ApexClassNames(ctx context.Context, ids []string) (map[string]string, error)
	ApexPageNames(ctx context.Context, ids []string) (map[string]string, error)
	RecordTypeNames(ctx context.Context) (map[string]string, error)
	TabNames(ctx context.Context) (map[string]string, error)
	AppNames(ctx context.Context) (map[string]string, error)

	// Profile-mode only: the richer tab/app visibility metadata.
	ProfileVisibility(ctx context.Context, profileID string) (*VisibilityMetadata, error)
}

// Normalizer turns raw permission records for a set of profiles or
// permission sets into canonical documents. It is stateless; every call
// performs a full fetch.
type Normalizer struct {
	src Source
}

func NewNormalizer(src Source) *Normalizer {
	return &Normalizer{src: src}
}

// NormalizeProfiles returns one canonical document per resolvable profile
// id, in input order. Ids with no basic record or no owned permission set
// are skipped. Failures of individual bulk or name-resolution queries
// degrade to empty results and never abort the run.
func (n *Normalizer) NormalizeProfiles(ctx context.Context, ids []string) ([]*Profile, error) {
	basics, err := n.src.Profiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching profiles: %w", err)
	}
	displayNames := make(map[string]string, len(basics))
	for _, rec := range basics {
		displayNames[rec.Get("Id").Str] = rec.Get("Name").Str
	}

	// Every profile owns exactly one permission set; all permission data is
	// keyed by that permission-set id, so resolve the indirection up front.
	owned, err := n.src.OwnedPermissionSets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving owned permission sets: %w", err)
	}
	// owners: permission-set id -> profile id; psByOwner is the reverse.
	owners := make(map[string]string, len(owned))
	psByOwner := make(map[string]string, len(owned))
	for _, rec := range owned {
		psID := rec.Get("Id").Str
		profileID := rec.Get("ProfileId").Str
		owners[psID] = profileID
		psByOwner[profileID] = psID
	}

	psIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		if psID, ok := psByOwner[id]; ok {
			psIDs = append(psIDs, psID)
		}
	}

	raw, names := n.fetch(ctx, psIDs)
	bundles := GroupByOwner(raw, owners)

	out := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		name, ok := displayNames[id]
		if !ok {
			utils.Log.Warnf("Skipping unknown profile id %s", id)
			continue
		}
		if _, ok := psByOwner[id]; !ok {
			utils.Log.Warnf("Skipping profile %s: no owned permission set", id)
			continue
		}
		vis, err := n.src.ProfileVisibility(ctx, id)
		if err != nil {
			utils.Log.Warnf("Visibility metadata for profile %s failed, using access-grant fallback: %v", id, err)
			vis = nil
		}
		out = append(out, buildProfile(id, name, bundles[id], names, vis))
	}
	return out, nil
}

// NormalizePermissionSets is the permission-set-mode counterpart. The
// owner mapping is the identity and the richer visibility source does not
// exist, so tab/app visibility always comes from the access-grant fallback.
func (n *Normalizer) NormalizePermissionSets(ctx context.Context, ids []string) ([]*Profile, error) {
	basics, err := n.src.PermissionSetsBasic(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching permission sets: %w", err)
	}
	displayNames := make(map[string]string, len(basics))
	owners := make(map[string]string, len(basics))
	psIDs := make([]string, 0, len(basics))
	for _, rec := range basics {
		id := rec.Get("Id").Str
		displayNames[id] = PermissionSetPrefix + rec.Get("Label").Str
		owners[id] = id
		psIDs = append(psIDs, id)
	}

	raw, names := n.fetch(ctx, psIDs)
	bundles := GroupByOwner(raw, owners)

	out := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		name, ok := displayNames[id]
		if !ok {
			utils.Log.Warnf("Skipping unknown permission set id %s", id)
			continue
		}
		out = append(out, buildProfile(id, name, bundles[id], names, nil))
	}
	return out, nil
}

// fetch runs the two query waves. Wave one issues the five bulk
// permission-data queries concurrently; wave two resolves entity names for
// the ids wave one surfaced. Each query writes to its own slot and
// substitutes an empty result on failure, with no retry.
func (n *Normalizer) fetch(ctx context.Context, psIDs []string) (RawRecords, nameCatalog) {
	var (
		raw   RawRecords
		names nameCatalog
		wg    sync.WaitGroup
	)

	warn := func(what string, err error) {
		utils.Log.Warnf("%s query failed, continuing with empty result: %v", what, err)
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		recs, err := n.src.ObjectPermissions(ctx, psIDs)
		if err != nil {
			warn("object permissions", err)
			return
		}
		raw.ObjectPermissions = recs
	}()
	go func() {
		defer wg.Done()
		recs, err := n.src.FieldPermissions(ctx, psIDs)
		if err != nil {
			warn("field permissions", err)
			return
		}
		raw.FieldPermissions = recs
	}()
	go func() {
		defer wg.Done()
		recs, err := n.src.PermissionSetRecords(ctx, psIDs)
		if err != nil {
			warn("permission set records", err)
			return
		}
		raw.PermissionSets = recs
	}()
	go func() {
		defer wg.Done()
		recs, err := n.src.SetupEntityAccess(ctx, psIDs)
		if err != nil {
			warn("setup entity access", err)
			return
		}
		raw.SetupEntityAccess = recs
	}()
	go func() {
		defer wg.Done()
		pages, err := n.src.LightningPageNames(ctx)
		if err != nil {
			warn("lightning pages", err)
			return
		}
		names.flexiPages = pages
	}()
	wg.Wait()

	// Name resolution depends on the entity ids found in the access grants,
	// which is only known now.
	apexIDs, pageIDs := collectSetupIDs(raw.SetupEntityAccess)

	wg.Add(5)
	go func() {
		defer wg.Done()
		m, err := n.src.ApexClassNames(ctx, apexIDs)
		if err != nil {
			warn("apex class names", err)
			return
		}
		names.apexClasses = m
	}()
	go func() {
		defer wg.Done()
		m, err := n.src.ApexPageNames(ctx, pageIDs)
		if err != nil {
			warn("apex page names", err)
			return
		}
		names.apexPages = m
	}()
	go func() {
		defer wg.Done()
		m, err := n.src.RecordTypeNames(ctx)
		if err != nil {
			warn("record type names", err)
			return
		}
		names.recordTypes = m
	}()
	go func() {
		defer wg.Done()
		m, err := n.src.TabNames(ctx)
		if err != nil {
			warn("tab names", err)
			return
		}
		names.tabs = m
	}()
	go func() {
		defer wg.Done()
		m, err := n.src.AppNames(ctx)
		if err != nil {
			warn("app names", err)
			return
		}
		names.apps = m
	}()
	wg.Wait()

	return raw, names
}

// collectSetupIDs gathers the distinct apex class and Visualforce page ids
// referenced by the access grants, so the id-based lookups stay bounded to
// what is actually referenced.
func collectSetupIDs(grants []gjson.Result) (apexIDs, pageIDs []string) {
	seenApex := make(map[string]bool)
	seenPage := make(map[string]bool)
	for _, rec := range grants {
		id := rec.Get("SetupEntityId").Str
		switch rec.Get("SetupEntityType").Str {
		case setupTypeApexClass:
			if !seenApex[id] {
				seenApex[id] = true
				apexIDs = append(apexIDs, id)
			}
		case setupTypeApexPage:
			if !seenPage[id] {
				seenPage[id] = true
				pageIDs = append(pageIDs, id)
			}
		}
	}
	return apexIDs, pageIDs
}
