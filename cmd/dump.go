package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/kardex-extract/internal/dump"
	"github.com/ginjaninja78/kardex-extract/internal/source"
)

var (
	dumpLimit  int
	dumpSample int
	dumpList   bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump [TABLE]",
	Short: "Dump a table to <TABLE>_FULL.csv and an XLSX sample",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !dumpList && len(args) == 0 {
			return fmt.Errorf("a table name is required (or --list)")
		}

		sess, err := loadSession(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		src := source.New(sess.cfg.Database, sess.log)
		out := cmd.OutOrStdout()

		if dumpList {
			tables, err := src.ListTables(ctx)
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(out, t)
			}
			return nil
		}

		sample := sess.cfg.Dump.SampleRows
		if cmd.Flags().Changed("sample") {
			sample = dumpSample
		}

		res, err := dump.Run(ctx, src, args[0], dump.Options{
			OutputDir:   sess.cfg.OutputDir,
			Limit:       dumpLimit,
			SampleRows:  sample,
			ColumnWidth: sess.cfg.XLSXColumnWidth,
		}, sess.log)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Table:   %s (%d rows, %d columns)\n", res.Table, res.Rows, res.Columns)
		fmt.Fprintf(out, "CSV:     %s\n", res.CSVPath)
		if res.SamplePath != "" {
			fmt.Fprintf(out, "Sample:  %s\n", res.SamplePath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().IntVar(&dumpLimit, "limit", 0, "Read at most N rows (0 reads the whole table)")
	dumpCmd.Flags().IntVar(&dumpSample, "sample", 0, "Rows in the XLSX sample (default from config, 0 disables)")
	dumpCmd.Flags().BoolVar(&dumpList, "list", false, "List the tables of the database")
}
