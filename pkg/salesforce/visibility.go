package salesforce

import (
	"context"

	"github.com/permscope/permscope/pkg/perms"
)

// ProfileVisibility reads a profile's tab and application visibility from
// the Tooling API Profile metadata. The Metadata field can only be selected
// one row at a time, so this is a per-profile query. A profile with no
// entries yields empty maps, which callers treat as "use the access-grant
// fallback".
func (c *Client) ProfileVisibility(ctx context.Context, profileID string) (*perms.VisibilityMetadata, error) {
	recs, err := c.ToolingQuery(ctx, "SELECT Metadata FROM Profile WHERE Id = '"+escapeSOQL(profileID)+"'")
	if err != nil {
		return nil, err
	}

	vis := &perms.VisibilityMetadata{
		Tabs: make(map[string]perms.TabVisibility),
		Apps: make(map[string]perms.AppVisibility),
	}
	if len(recs) == 0 {
		return vis, nil
	}

	meta := recs[0].Get("Metadata")
	for _, tv := range meta.Get("tabVisibilities").Array() {
		tab := tv.Get("tab").Str
		if tab == "" {
			continue
		}
		switch tv.Get("visibility").Str {
		case "DefaultOn":
			vis.Tabs[tab] = perms.TabDefaultOn
		case "DefaultOff":
			vis.Tabs[tab] = perms.TabDefaultOff
		case "Hidden":
			vis.Tabs[tab] = perms.TabHidden
		}
	}
	for _, av := range meta.Get("applicationVisibilities").Array() {
		app := av.Get("application").Str
		if app == "" {
			continue
		}
		vis.Apps[app] = perms.AppVisibility{
			Visible: av.Get("visible").Bool(),
			Default: av.Get("default").Bool(),
		}
	}
	return vis, nil
}
