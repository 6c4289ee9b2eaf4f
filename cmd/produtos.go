package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/kardex-extract/internal/logging"
	"github.com/ginjaninja78/kardex-extract/internal/pipeline"
)

var produtosUpload bool

var produtosCmd = &cobra.Command{
	Use:   "produtos",
	Short: "Export every product with its stock quantity and totals",
	Long: `Reads the product register and derives each product's quantity from its
stock value and cost price. Products without a cost get no quantity. STATUS
and NIVEL classify stock items and purchase orders from the product name.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		env, release, err := sess.env(ctx, produtosUpload)
		if err != nil {
			return err
		}
		defer release()

		report, err := (&pipeline.Produtos{Env: env, Products: sess.db()}).Run(ctx, produtosUpload)
		if err != nil {
			logging.LogError(sess.log, "cmd", "produtos", "product export failed", nil, err)
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Products:     %d\n", report.Totals.Products)
		fmt.Fprintf(out, "Without cost: %d\n", report.Totals.WithoutCost)
		fmt.Fprintf(out, "Cost total:   %s\n", report.Totals.CostTotal.StringFixed(2))
		fmt.Fprintf(out, "Retail total: %s\n", report.Totals.RetailTotal.StringFixed(2))
		fmt.Fprintf(out, "Output:       %s\n", report.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(produtosCmd)
	produtosCmd.Flags().BoolVar(&produtosUpload, "upload", false, "Publish the export after a successful run")
}
