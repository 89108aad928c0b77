package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the org's profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sf, err := newClient()
		if err != nil {
			return err
		}
		recs, err := sf.ListProfiles(context.Background())
		if err != nil {
			return err
		}
		for _, rec := range recs {
			fmt.Printf("%s  %s\n", rec.Get("Id").Str, rec.Get("Name").Str)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
