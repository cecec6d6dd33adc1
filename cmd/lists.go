package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/ingest"
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/report"
	"github.com/sells-group/pricelist-cli/internal/store"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Inspect and manage stored price lists",
}

// -- lists list --

var listsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored price lists, most recent first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		filter := store.ListFilter{Name: name, Kind: model.ListKind(kind), Limit: limit, Offset: offset}
		return runListsList(ctx, svc, filter, format, os.Stdout)
	},
}

func runListsList(ctx context.Context, svc *catalog.Service, filter store.ListFilter, format report.Format, out io.Writer) error {
	lists, err := svc.List(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "lists list")
	}
	if format != report.FormatTable {
		return report.Encode(out, format, lists)
	}
	if len(lists) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No price lists found.")
		return nil
	}
	report.Lists(out, lists)
	return nil
}

// -- lists current --

var listsCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current list and its history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		snap, err := svc.Snapshot(ctx)
		if err != nil {
			return eris.Wrap(err, "lists current")
		}
		if format != report.FormatTable {
			return report.Encode(os.Stdout, format, snap)
		}
		report.Snapshot(os.Stdout, snap)
		return nil
	},
}

// -- lists show --

var listsShowCmd = &cobra.Command{
	Use:   "show <list-id>",
	Short: "Show a list with its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
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

		return runListsShow(ctx, svc, f, args[0], format, os.Stdout)
	},
}

func runListsShow(ctx context.Context, svc *catalog.Service, f *report.Formatter, id string, format report.Format, out io.Writer) error {
	l, err := svc.Get(ctx, id)
	if err != nil {
		return eris.Wrap(err, "lists show")
	}
	if format != report.FormatTable {
		return report.Encode(out, format, l)
	}
	report.Lists(out, []model.ListSummary{l.Summary()})
	_, _ = fmt.Fprintln(out)
	f.Items(out, l.Items)
	return nil
}

// -- lists delete --

var listsDeleteCmd = &cobra.Command{
	Use:   "delete <list-id>",
	Short: "Delete a stored list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.Delete(ctx, args[0]); err != nil {
			return eris.Wrap(err, "lists delete")
		}
		_, _ = fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
		return nil
	},
}

// -- lists load-dump --

var listsLoadDumpCmd = &cobra.Command{
	Use:   "load-dump <file>",
	Short: "Restore lists from a JSON dump of the version-controlled document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := runLoadDump(ctx, svc, args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Restored %d lists\n", n)
		return nil
	},
}

func runLoadDump(ctx context.Context, svc *catalog.Service, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrap(err, "open dump")
	}
	defer f.Close() //nolint:errcheck

	lists, err := ingest.LoadLegacyDump(f)
	if err != nil {
		return 0, eris.Wrap(err, "read dump")
	}
	n, err := svc.Restore(ctx, lists)
	if err != nil {
		return n, eris.Wrap(err, "restore dump")
	}
	zap.L().Info("dump restored", zap.String("file", path), zap.Int("lists", n))
	return n, nil
}

func formatFlag(cmd *cobra.Command) (report.Format, error) {
	s, _ := cmd.Flags().GetString("format")
	return report.ParseFormat(s)
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "table", "output format: table, json or yaml")
}

func init() {
	listsListCmd.Flags().String("name", "", "filter by exact name")
	listsListCmd.Flags().String("kind", "", "filter by kind")
	listsListCmd.Flags().Int("limit", store.DefaultListLimit, "max lists to show")
	listsListCmd.Flags().Int("offset", 0, "lists to skip")

	for _, c := range []*cobra.Command{listsListCmd, listsCurrentCmd, listsShowCmd} {
		addFormatFlag(c)
	}

	listsCmd.AddCommand(listsListCmd, listsCurrentCmd, listsShowCmd, listsDeleteCmd, listsLoadDumpCmd)
	rootCmd.AddCommand(listsCmd)
}
