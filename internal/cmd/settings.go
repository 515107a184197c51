package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/output"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the site settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := newServices().Settings.Get(cmd.Context())
		if err != nil {
			return err
		}
		rendered, err := output.JSON(settings)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}
