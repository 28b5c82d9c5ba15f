// ABOUTME: import subcommands for company and contact files
// ABOUTME: Accepts CSV or XLSX plus --map column overrides and prints the batch result
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/harperreed/outreach/importer"
	"github.com/harperreed/outreach/outreach"
	"github.com/spf13/cobra"
)

type importFunc func(ctx context.Context, svc *outreach.Service, data []byte, mapping map[string]string) (*importer.Result, error)

func newImportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import companies or contacts from CSV/XLSX",
	}
	cmd.AddCommand(
		newImportFileCommand(opts, "companies", func(ctx context.Context, svc *outreach.Service, data []byte, m map[string]string) (*importer.Result, error) {
			return svc.ImportCompanies(ctx, data, m)
		}),
		newImportFileCommand(opts, "contacts", func(ctx context.Context, svc *outreach.Service, data []byte, m map[string]string) (*importer.Result, error) {
			return svc.ImportContacts(ctx, data, m)
		}),
	)
	return cmd
}

func newImportFileCommand(opts *rootOptions, entity string, run importFunc) *cobra.Command {
	var mapping map[string]string
	cmd := &cobra.Command{
		Use:   entity + " <file>",
		Short: "Import " + entity + " from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := run(cmd.Context(), a.svc, data, mapping)
			if err != nil {
				printImportFailure(cmd.ErrOrStderr(), err)
				return err
			}
			printImportResult(cmd.OutOrStdout(), entity, result)
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&mapping, "map", nil, "Column mapping overrides, e.g. --map \"Org=company name\"")
	return cmd
}

func printImportResult(w io.Writer, entity string, r *importer.Result) {
	fmt.Fprintf(w, "Imported %s: %d new, %d updated, %d unchanged of %d rows\n", entity, r.Imported, r.Updated, r.Skipped, r.Total)
	rows := make([][]string, 0, len(r.ValidationErrors)+len(r.Errors))
	for _, e := range r.ValidationErrors {
		rows = append(rows, []string{strconv.Itoa(e.Row), "invalid", e.Field, e.Message})
	}
	for _, e := range r.Errors {
		rows = append(rows, []string{strconv.Itoa(e.Row), "failed", e.Field, e.Message})
	}
	if len(rows) > 0 {
		printTable(w, []string{"ROW", "KIND", "FIELD", "MESSAGE"}, rows)
	}
}

func printImportFailure(w io.Writer, err error) {
	var svcErr *outreach.Error
	if !errors.As(err, &svcErr) {
		return
	}
	for _, d := range svcErr.Details {
		fmt.Fprintf(w, "  %s\n", d)
	}
	for _, e := range svcErr.RowErrors {
		fmt.Fprintf(w, "  row %d: %s\n", e.Row, e.Message)
	}
}
