package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/output"
)

var categoriesOutput string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Browse news categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(categoriesOutput)
		if err != nil {
			return err
		}

		categories, err := newServices().Categories.List(cmd.Context())
		if err != nil {
			return err
		}

		if format == output.FormatJSON {
			rendered, err := output.JSON(categories)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		}
		fmt.Println(output.CategoriesTable(categories))
		return nil
	},
}

func init() {
	categoriesListCmd.Flags().StringVarP(&categoriesOutput, "output", "o", "table", "output format (table|json)")
	categoriesCmd.AddCommand(categoriesListCmd)
	rootCmd.AddCommand(categoriesCmd)
}
