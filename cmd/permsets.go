package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var permsetsCmd = &cobra.Command{
	Use:   "permsets",
	Short: "List the org's standalone permission sets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sf, err := newClient()
		if err != nil {
			return err
		}
		recs, err := sf.ListPermissionSets(context.Background())
		if err != nil {
			return err
		}
		for _, rec := range recs {
			fmt.Printf("%s  %s\n", rec.Get("Id").Str, rec.Get("Label").Str)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(permsetsCmd)
}
