package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/kardex-extract/internal/csvparser"
	"github.com/ginjaninja78/kardex-extract/internal/publish"
	"github.com/ginjaninja78/kardex-extract/internal/xlsxwriter"
)

var (
	uploadFile  string
	uploadSheet string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Publish a saved report to the configured spreadsheet and bucket",
	Long: `The upload command reads a CSV or XLSX written by a previous run (by default the
movement report) and hands it to every configured publisher without
touching the database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		cfg := sess.cfg

		path := uploadFile
		if path == "" {
			path = cfg.OutputPath(cfg.Report.OutputName + ".csv")
		}
		table, err := readUploadTable(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		target := *cfg
		if uploadSheet != "" {
			target.Sheets.SheetName = uploadSheet
		}
		pubs, err := publish.FromConfig(ctx, &target, sess.log)
		if err != nil {
			return err
		}
		defer publish.CloseAll(pubs)
		if len(pubs) == 0 {
			return fmt.Errorf("nothing to upload to: configure sheets or gcs")
		}

		if err := publish.All(ctx, pubs, table, sess.log); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Published %s (%d rows) to %d destination(s)\n", table.Name, len(table.Records), len(pubs))
		return nil
	},
}

// readUploadTable loads a CSV or XLSX report. Spreadsheets have no CSV to
// copy, so the bucket publisher renders their records instead.
func readUploadTable(path string) (publish.Table, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		header, records, err := xlsxwriter.ReadTable(path)
		if err != nil {
			return publish.Table{}, err
		}
		return publish.Table{Name: name, Header: header, Records: records}, nil
	}

	data, err := csvparser.Parse(path, csvparser.Settings{})
	if err != nil {
		return publish.Table{}, err
	}
	return publish.Table{Name: name, Path: path, Header: data.Headers, Records: data.Records}, nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "CSV or XLSX file to publish (default: the movement report)")
	uploadCmd.Flags().StringVar(&uploadSheet, "sheet", "", "Spreadsheet tab to rewrite (default: the file name)")
}
