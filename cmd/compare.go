package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/compare"
	"github.com/sells-group/pricelist-cli/internal/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the current list against a previous one",
	Long:  "Compares item prices of the current list against --prior, or against the most recent previous list. Only codes present in both lists are reported.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		f, err := newFormatter()
		if err != nil {
			return err
		}
		prior, _ := cmd.Flags().GetString("prior")
		sortKey, _ := cmd.Flags().GetString("sort")
		dir, _ := cmd.Flags().GetString("dir")
		exportDir, _ := cmd.Flags().GetString("export")

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		return runCompare(ctx, svc, f, compareParams{
			prior:     prior,
			key:       compare.ParseSortKey(sortKey),
			dir:       compare.ParseDirection(dir),
			format:    format,
			exportDir: exportDir,
			now:       time.Now(),
		}, os.Stdout)
	},
}

type compareParams struct {
	prior     string
	key       compare.SortKey
	dir       compare.Direction
	format    report.Format
	exportDir string
	now       time.Time
}

func runCompare(ctx context.Context, svc *catalog.Service, f *report.Formatter, p compareParams, out io.Writer) error {
	cmp, err := svc.Compare(ctx, p.prior, p.key, p.dir)
	if err != nil {
		return eris.Wrap(err, "compare")
	}

	if p.exportDir != "" {
		path := filepath.Join(p.exportDir, report.ExportName(report.ComparisonExportPrefix, p.now))
		if err := writeExport(path, func(w io.Writer) error { return report.ExportComparison(w, cmp.Rows) }); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "Exported %d rows to %s\n", len(cmp.Rows), path)
	}

	if p.format != report.FormatTable {
		return report.Encode(out, p.format, cmp)
	}
	f.Comparison(out, cmp.Current, cmp.Prior, cmp.Result)
	return nil
}

func init() {
	compareCmd.Flags().String("prior", "", "id of the list to compare against (default: most recent previous)")
	compareCmd.Flags().String("sort", "code", "sort rows by: code or delta")
	compareCmd.Flags().String("dir", "asc", "sort direction: asc or desc")
	compareCmd.Flags().String("export", "", "directory to write an xlsx export into")
	addFormatFlag(compareCmd)
	rootCmd.AddCommand(compareCmd)
}
