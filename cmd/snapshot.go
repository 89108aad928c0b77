package cmd

import (
	"context"
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/permscope/permscope/pkg/perms"
	"github.com/permscope/permscope/pkg/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [id...]",
	Short: "Save canonical documents to the local snapshot store, or list stored ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		dbPath, _ := cmd.Flags().GetString("dbpath")
		list, _ := cmd.Flags().GetBool("list")

		db, err := store.Open(snapshotDBPath(dbPath))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		if list {
			snaps, err := db.ListSnapshots(ctx)
			if err != nil {
				return err
			}
			for _, s := range snaps {
				fmt.Printf("%s  %-13s  %s  %s\n", s.TakenAt.Format("2006-01-02 15:04:05"), s.Kind, s.EntityID, s.DisplayName)
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("no ids given (or use --list)")
		}
		if kind != "profile" && kind != "permset" {
			return fmt.Errorf("invalid --kind %q, want profile or permset", kind)
		}

		sf, err := newClient()
		if err != nil {
			return err
		}
		n := perms.NewNormalizer(sf)

		var profiles []*perms.Profile
		snapKind := "profile"
		if kind == "permset" {
			snapKind = "permissionSet"
			profiles, err = n.NormalizePermissionSets(ctx, args)
		} else {
			profiles, err = n.NormalizeProfiles(ctx, args)
		}
		if err != nil {
			return err
		}

		for _, p := range profiles {
			if err := db.SaveSnapshot(ctx, snapKind, p); err != nil {
				return err
			}
			fmt.Printf("saved %s %s (%s)\n", snapKind, p.ID, p.DisplayName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringP("kind", "k", "profile", "Entity kind: profile or permset")
	snapshotCmd.Flags().Bool("list", false, "List stored snapshots")
	snapshotCmd.Flags().String("dbpath", "", "Path to the snapshot SQLite DB (default: ~/.permscope.sqlite)")
}

// snapshotDBPath resolves the snapshot DB location, defaulting to the home
// directory.
func snapshotDBPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	home, err := homedir.Dir()
	if err != nil {
		return ".permscope.sqlite"
	}
	return home + "/.permscope.sqlite"
}
