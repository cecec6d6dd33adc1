package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/report"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <code>",
	Short: "Show every derived price of an item in the current list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		return runQuote(ctx, svc, f, args[0], discounts, format, os.Stdout)
	},
}

func runQuote(ctx context.Context, svc *catalog.Service, f *report.Formatter, code string, discounts model.DiscountConfig, format report.Format, out io.Writer) error {
	q, err := svc.Quote(ctx, code, discounts)
	if err != nil {
		return eris.Wrap(err, "quote")
	}
	if format != report.FormatTable {
		return report.Encode(out, format, q)
	}
	f.Quote(out, q)
	return nil
}

func init() {
	addFormatFlag(quoteCmd)
	addDiscountFlags(quoteCmd)
	rootCmd.AddCommand(quoteCmd)
}
