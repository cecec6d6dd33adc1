package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/ingest"
	"github.com/sells-group/pricelist-cli/internal/model"
)

// importParallelism bounds concurrent file parsing.
const importParallelism = 4

var importCmd = &cobra.Command{
	Use:   "import <source>...",
	Short: "Import price lists from xlsx, csv, json or zip files and URLs",
	Long:  "Parses every source, then makes each one the current list in argument order. The list that was current moves into history.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts, err := importOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		return runImport(ctx, svc, newLoader(), args, opts, os.Stdout)
	},
}

func importOptionsFromFlags(cmd *cobra.Command) (ingest.Options, error) {
	name, _ := cmd.Flags().GetString("name")
	kind, _ := cmd.Flags().GetString("kind")
	origin, _ := cmd.Flags().GetString("origin")
	effective, _ := cmd.Flags().GetString("effective-date")
	sheet, _ := cmd.Flags().GetString("sheet")

	opts := ingest.Options{Name: name, Origin: origin}
	opts.Sheet.SheetName = sheet

	k := model.ListKind(kind)
	if !k.Valid() {
		return opts, eris.Errorf("invalid --kind %q (want linea or mallas)", kind)
	}
	opts.Kind = k

	if effective != "" {
		d, err := model.ParseDate(effective)
		if err != nil {
			return opts, eris.Wrap(err, "invalid --effective-date")
		}
		opts.EffectiveDate = &d
	}
	return opts, nil
}

// runImport parses sources concurrently and imports them sequentially so
// the last source ends up current.
func runImport(ctx context.Context, svc *catalog.Service, loader *ingest.Loader, sources []string, opts ingest.Options, out io.Writer) error {
	lists := make([]*model.PriceList, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importParallelism)
	for i, src := range sources {
		g.Go(func() error {
			l, err := loader.Load(gctx, src, opts)
			if err != nil {
				return eris.Wrapf(err, "import %s", src)
			}
			lists[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, l := range lists {
		res, err := svc.Import(ctx, l)
		if err != nil {
			return eris.Wrapf(err, "import %s", sources[i])
		}
		zap.L().Info("import complete",
			zap.String("source", sources[i]),
			zap.String("id", res.Current.ID),
			zap.Int("items", len(res.Current.Items)),
		)
		_, _ = fmt.Fprintf(out, "Imported %q (%s): %d items, %d previous lists\n",
			res.Current.Name, res.Current.ID, len(res.Current.Items), len(res.Previous))
	}
	return nil
}

func init() {
	importCmd.Flags().String("name", "", "list name (default: file name)")
	importCmd.Flags().String("kind", "", "list kind: linea or mallas")
	importCmd.Flags().String("origin", "", "list origin")
	importCmd.Flags().String("effective-date", "", "effective date, YYYY-MM-DD (default: import date)")
	importCmd.Flags().String("sheet", "", "worksheet name for xlsx files (default: first sheet)")
	rootCmd.AddCommand(importCmd)
}
