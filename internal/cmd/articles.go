package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/output"
	"github.com/newsroomkit/newsroomkit/internal/services"
)

var (
	articlesOutput   string
	articlesCategory string
	articlesLimit    int
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Browse articles",
}

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(articlesOutput)
		if err != nil {
			return err
		}

		articles, err := newServices().Articles.List(cmd.Context(), services.ListOptions{
			CategoryID: articlesCategory,
			Limit:      articlesLimit,
		})
		if err != nil {
			return err
		}

		if format == output.FormatJSON {
			rendered, err := output.JSON(articles)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		}
		fmt.Println(output.ArticlesTable(articles))
		return nil
	},
}

var articlesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		article, err := newServices().Articles.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rendered, err := output.JSON(article)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	articlesListCmd.Flags().StringVarP(&articlesOutput, "output", "o", "table", "output format (table|json)")
	articlesListCmd.Flags().StringVar(&articlesCategory, "category", "", "filter by category id")
	articlesListCmd.Flags().IntVar(&articlesLimit, "limit", 0, "maximum number of articles")
	articlesCmd.AddCommand(articlesListCmd)
	articlesCmd.AddCommand(articlesGetCmd)
	rootCmd.AddCommand(articlesCmd)
}
