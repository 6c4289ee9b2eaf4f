package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/kardex-extract/internal/logging"
	"github.com/ginjaninja78/kardex-extract/internal/pipeline"
)

var estoqueUpload bool

var estoqueCmd = &cobra.Command{
	Use:   "estoque",
	Short: "Build the stock-by-grade report from the whole ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		env, release, err := sess.env(ctx, estoqueUpload)
		if err != nil {
			return err
		}
		defer release()

		report, err := (&pipeline.Estoque{Env: env}).Run(ctx, estoqueUpload)
		if err != nil {
			logging.LogError(sess.log, "cmd", "estoque", "stock report failed", nil, err)
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Extracted: %d\n", report.Summary.RecordsExtracted)
		fmt.Fprintf(out, "Grades:    %d\n", len(report.Lines))
		fmt.Fprintf(out, "Output:    %s\n", report.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(estoqueCmd)
	estoqueCmd.Flags().BoolVar(&estoqueUpload, "upload", false, "Publish the report after a successful run")
}
