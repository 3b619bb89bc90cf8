package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cmdpkg "github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	"github.com/storeops/storectl/internal/cmd/root/verbs"
	"github.com/storeops/storectl/internal/cmd/root/verbs/collection"
	xlsx "github.com/storeops/storectl/internal/export"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Export

	fileFlagName  = "file"
	fileFlagShort = "f"
)

var (
	exportUse = Verb.String() + " <collection>"

	exportShort = "Write a collection to an Excel workbook"

	exportLong = normalizers.LongDesc(`
Use export to save every record of a collection that survives --search to an
Excel workbook. Unlike list, export is not paginated. Money and dates are
written as typed cells so they can be summed and sorted in a spreadsheet.

Pass --file - to write the workbook to standard output.`)

	exportExamples = normalizers.Examples(fmt.Sprintf(`
		# Export the credit customers to credit-customers.xlsx
		%[1]s export credit-customers
		# Export the lost rice reports to a named file
		%[1]s export lost-items --search rice --file lost-rice.xlsx
		`, meta.CLIName))
)

// Result is printed once the workbook is written.
type Result struct {
	Collection string `json:"collection"`
	File       string `json:"file"`
	Records    int    `json:"records"`
}

func NewExportCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:               exportUse,
		Short:             exportShort,
		Long:              exportLong,
		Example:           exportExamples,
		Aliases:           []string{"x", "xlsx"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: collection.CompleteNames,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args))
		},
	}
	collection.AddSearchFlags(cmd.Flags())
	cmd.Flags().StringP(fileFlagName, fileFlagShort, "",
		"Workbook to write. Defaults to <collection>.xlsx in the current directory.")
	return cmd, nil
}

func run(helper cmdpkg.Helper) error {
	s, err := collection.Open(helper)
	if err != nil {
		return err
	}
	b, err := s.Binding()
	if err != nil {
		return err
	}

	// Unlike list, a failed fetch is an error here.
	records, err := b.Fetch(helper.GetContext())
	if err != nil {
		return cmdpkg.PrepareExecutionErrorWithHelper(helper,
			fmt.Sprintf("failed to load %s", s.Collection.Name), err, "collection", s.Collection.Name)
	}
	ctrl := b.Controller()
	ctrl.SetRecords(records)
	filtered := ctrl.Filtered()

	path, _ := helper.GetCmd().Flags().GetString(fileFlagName)
	path = strings.TrimSpace(path)
	if path == "" {
		path = s.Collection.Name + ".xlsx"
	}

	if path == "-" {
		if err := xlsx.Write(helper.GetStreams().Out, s.Collection.Title, s.Collection.Headers, filtered); err != nil {
			return cmdpkg.PrepareExecutionErrorWithHelper(helper, "failed to write workbook", err)
		}
		return nil
	}

	err = writeFile(path, func(w io.Writer) error {
		return xlsx.Write(w, s.Collection.Title, s.Collection.Headers, filtered)
	})
	if err != nil {
		return cmdpkg.PrepareExecutionErrorWithHelper(helper, "failed to write workbook", err, "file", path)
	}
	s.Logger.Info("collection exported", "collection", s.Collection.Name, "file", path, "records", len(filtered))

	result := Result{Collection: s.Collection.Name, File: path, Records: len(filtered)}
	return printer.Render(helper, result, func(out io.Writer) error {
		_, err := fmt.Fprintf(out, "Exported %d %s to %s\n", len(filtered), plural(len(filtered)), path)
		return err
	})
}

// writeFile creates path and fills it with write. A failed write removes the
// partial file.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "record"
	}
	return "records"
}
