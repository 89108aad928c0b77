package perms

import "sort"

// Lookup maps raw entity ids to display names. Ids that could not be
// resolved are simply absent; callers fall back to the raw id.
type Lookup map[string]string

// Name returns the display name for id, or the raw id when no name is known.
func (l Lookup) Name(id string) string {
	if name, ok := l[id]; ok && name != "" {
		return name
	}
	return id
}

// ResolveNames maps ids through the lookup table, deduplicates and sorts.
// Unresolvable ids keep their raw value so comparison keys stay stable
// across entities that resolved with different degrees of success.
func ResolveNames(ids []string, names Lookup) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name := names.Name(id)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// nameCatalog holds the name-resolution lookup tables for one normalization
// run. Lightning pages are not owner-scoped, so flexiPages is fetched once
// in wave one and shared by every owner.
type nameCatalog struct {
	apexClasses Lookup
	apexPages   Lookup
	recordTypes Lookup
	tabs        Lookup
	apps        Lookup
	flexiPages  Lookup
}
