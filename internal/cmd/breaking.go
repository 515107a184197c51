package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/output"
)

var breakingCmd = &cobra.Command{
	Use:   "breaking",
	Short: "Show the active breaking-news ticker",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := newServices().Breaking.Active(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No active breaking news.")
			return nil
		}
		fmt.Println(output.BreakingTable(items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(breakingCmd)
}
