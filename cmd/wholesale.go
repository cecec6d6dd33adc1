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
	"go.uber.org/zap"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/report"
)

var wholesaleCmd = &cobra.Command{
	Use:   "wholesale",
	Short: "Show the wholesale price sheet of the current list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		discounts, err := discountsFromFlags(cmd, cfg.Discounts)
		if err != nil {
			return err
		}
		f, err := newFormatter()
		if err != nil {
			return err
		}
		search, _ := cmd.Flags().GetString("search")
		exportDir, _ := cmd.Flags().GetString("export")

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		return runWholesale(ctx, svc, f, wholesaleParams{
			search:    search,
			discounts: discounts,
			format:    format,
			exportDir: exportDir,
			now:       time.Now(),
		}, os.Stdout)
	},
}

type wholesaleParams struct {
	search    string
	discounts model.DiscountConfig
	format    report.Format
	exportDir string
	now       time.Time
}

func runWholesale(ctx context.Context, svc *catalog.Service, f *report.Formatter, p wholesaleParams, out io.Writer) error {
	rows, err := svc.Wholesale(ctx, p.search, p.discounts)
	if err != nil {
		return eris.Wrap(err, "wholesale")
	}

	if p.exportDir != "" {
		path := filepath.Join(p.exportDir, report.ExportName(report.WholesaleExportPrefix, p.now))
		if err := writeExport(path, func(w io.Writer) error { return report.ExportWholesale(w, rows) }); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "Exported %d rows to %s\n", len(rows), path)
	}

	if p.format != report.FormatTable {
		return report.Encode(out, p.format, rows)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "No items match.")
		return nil
	}
	f.Wholesale(out, rows)
	return nil
}

// writeExport creates path and fills it with write.
func writeExport(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create export file")
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return eris.Wrapf(err, "write export %s", path)
	}
	if err := file.Close(); err != nil {
		return eris.Wrap(err, "close export file")
	}
	zap.L().Info("export written", zap.String("path", path))
	return nil
}

func init() {
	wholesaleCmd.Flags().String("search", "", "filter by code or description substring")
	wholesaleCmd.Flags().String("export", "", "directory to write an xlsx export into")
	addFormatFlag(wholesaleCmd)
	addDiscountFlags(wholesaleCmd)
	rootCmd.AddCommand(wholesaleCmd)
}
