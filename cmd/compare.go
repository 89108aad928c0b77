package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permscope/permscope/pkg/diff"
	"github.com/permscope/permscope/pkg/export"
	"github.com/permscope/permscope/pkg/perms"
	"github.com/permscope/permscope/pkg/store"
)

var compareCmd = &cobra.Command{
	Use:   "compare <id> <id> [id...]",
	Short: "Compare two or more profiles or permission sets",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		profileIDs, _ := cmd.Flags().GetStringSlice("profiles")
		snapshotIDs, _ := cmd.Flags().GetStringSlice("snapshot")
		format, _ := cmd.Flags().GetString("format")
		includeUnchanged, _ := cmd.Flags().GetBool("include-unchanged")
		outPath, _ := cmd.Flags().GetString("output")
		dbPath, _ := cmd.Flags().GetString("dbpath")

		if kind != "profile" && kind != "permset" {
			return fmt.Errorf("invalid --kind %q, want profile or permset", kind)
		}
		if format != "json" && format != "csv" {
			return fmt.Errorf("invalid --format %q, want json or csv", format)
		}
		if len(args)+len(profileIDs)+len(snapshotIDs) < 2 {
			return fmt.Errorf("at least 2 entities are required")
		}

		sf, err := newClient()
		if err != nil {
			return err
		}
		ctx := context.Background()
		n := perms.NewNormalizer(sf)

		var profiles []*perms.Profile
		if kind == "profile" {
			profiles, err = n.NormalizeProfiles(ctx, args)
		} else {
			profiles, err = n.NormalizePermissionSets(ctx, args)
		}
		if err != nil {
			return err
		}

		// Permission set comparisons can mix in live profiles.
		if len(profileIDs) > 0 {
			merged, err := n.NormalizeProfiles(ctx, profileIDs)
			if err != nil {
				return err
			}
			profiles = append(profiles, merged...)
		}

		entities := make([]diff.Entity, 0, len(profiles)+len(snapshotIDs))
		for _, p := range profiles {
			entities = append(entities, diff.Entity{ID: p.ID, DisplayName: p.DisplayName, Profile: p})
		}

		if len(snapshotIDs) > 0 {
			snapKind := "profile"
			if kind == "permset" {
				snapKind = "permissionSet"
			}
			db, err := store.Open(snapshotDBPath(dbPath))
			if err != nil {
				return err
			}
			defer db.Close()
			for _, id := range snapshotIDs {
				p, takenAt, err := db.LatestSnapshot(ctx, snapKind, id)
				if err != nil {
					return err
				}
				entities = append(entities, diff.Entity{
					ID:          p.ID + "@" + takenAt.Format("2006-01-02"),
					DisplayName: p.DisplayName + " (snapshot " + takenAt.Format("2006-01-02") + ")",
					Profile:     p,
				})
			}
		}

		res, err := diff.Compare(entities)
		if err != nil {
			return err
		}

		var out []byte
		opts := export.Options{IncludeUnchanged: includeUnchanged}
		if format == "csv" {
			out, err = export.CSV(res, opts)
		} else {
			out, err = export.JSON(res, opts)
		}
		if err != nil {
			return err
		}

		if outPath != "" {
			return os.WriteFile(outPath, out, 0644)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringP("kind", "k", "profile", "Entity kind: profile or permset")
	compareCmd.Flags().StringSlice("profiles", nil, "Profile ids to merge into a permission set comparison")
	compareCmd.Flags().StringSlice("snapshot", nil, "Entity ids to load from the local snapshot store instead of the org")
	compareCmd.Flags().StringP("format", "f", "json", "Output format: json or csv")
	compareCmd.Flags().Bool("include-unchanged", false, "Keep unchanged paths in the output")
	compareCmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
	compareCmd.Flags().String("dbpath", "", "Path to the snapshot SQLite DB (default: ~/.permscope.sqlite)")
}
