package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/apiclient"
	"github.com/newsroomkit/newsroomkit/internal/config"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the CMS API",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		if _, err := client.Get(cmd.Context(), apiclient.PathHealth); err != nil {
			return fmt.Errorf("API health check failed: %w", err)
		}
		fmt.Printf("✅ %s is reachable\n", config.Get().API.BaseURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
