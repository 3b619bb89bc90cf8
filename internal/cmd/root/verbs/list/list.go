package list

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	cmdpkg "github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/common"
	jqoutput "github.com/storeops/storectl/internal/cmd/output/jq"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	"github.com/storeops/storectl/internal/cmd/output/rowtemplate"
	"github.com/storeops/storectl/internal/cmd/output/texttable"
	"github.com/storeops/storectl/internal/cmd/root/verbs"
	"github.com/storeops/storectl/internal/cmd/root/verbs/collection"
	"github.com/storeops/storectl/internal/cmd/root/verbs/view"
	"github.com/storeops/storectl/internal/listview"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/retail"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.List
)

var (
	listUse = Verb.String() + " <collection>"

	listShort = "Print one page of a collection"

	listLong = normalizers.LongDesc(`
Use list to fetch a collection from the store backend and print one page of it.

The whole collection is fetched, then --search narrows or reorders it and
--page picks the page to print. Text output is a table followed by the
"Showing X to Y of Z items" and "Page N of M" lines; json and yaml output
is the page view with its pagination fields.`)

	listExamples = normalizers.Examples(fmt.Sprintf(`
		# First page of the users waiting for approval
		%[1]s list pending-approvals
		# Third page of lost items, ten per page
		%[1]s list lost-items --page 3 --page-size 10
		# Credit customers whose name, phone or email contains "cafe"
		%[1]s list credit-customers --search cafe --search-mode exclude
		# Names only, through jq
		%[1]s list unit-items -o json --jq '.items[].name' -r
		# Browse the lost items in the table browser
		%[1]s list lost-items -i
		# One line per record from a template
		%[1]s list active-users --row-template '{{ .username }} <{{ .email }}>'
		`, meta.CLIName))
)

func NewListCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:               listUse,
		Short:             listShort,
		Long:              listLong,
		Example:           listExamples,
		Aliases:           []string{"ls", "l"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: collection.CompleteNames,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
		PreRunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			cfg, err := helper.GetConfig()
			if err != nil {
				return err
			}
			return jqoutput.BindFlags(cfg, c.Flags())
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args))
		},
	}

	collection.AddSearchFlags(cmd.Flags())
	collection.AddStrictFlag(cmd.Flags())
	cmd.Flags().Int(common.PageFlagName, 1, "Page to print, starting at 1. Pages past the end print the first page.")
	cmd.Flags().String(rowtemplate.FlagName, "",
		"Print one line per record from a Go template, e.g. '{{ .id }} {{ .name | upper }}'. "+
			"Fields use their JSON names; sprig functions are available.")
	cmd.Flags().BoolP(common.InteractiveFlagName, "i", false,
		"Open the collection in the table browser instead of printing a page.")
	jqoutput.AddFlags(cmd.Flags())

	return cmd, nil
}

func run(helper cmdpkg.Helper) error {
	interactive, err := helper.IsInteractive()
	if err != nil {
		return err
	}
	if interactive {
		return view.Browse(helper, helper.GetArgs()[0])
	}

	s, err := collection.Open(helper)
	if err != nil {
		return err
	}
	b, err := s.Binding()
	if err != nil {
		return err
	}

	var tmpl *rowtemplate.Template
	if text, _ := helper.GetCmd().Flags().GetString(rowtemplate.FlagName); strings.TrimSpace(text) != "" {
		if tmpl, err = rowtemplate.Parse(text); err != nil {
			return &cmdpkg.ConfigurationError{Err: err}
		}
	}

	if err := s.Load(b); err != nil {
		return err
	}

	ctrl := b.Controller()
	if page, _ := helper.GetCmd().Flags().GetInt(common.PageFlagName); page != 1 {
		if !ctrl.GoToPage(page) {
			s.Logger.Debug("page out of range, staying on the first page",
				"page", page, "total_pages", ctrl.TotalPages())
		}
	}

	view := ctrl.View()
	plan := b.Plan()
	return printer.Render(helper, view, func(out io.Writer) error {
		if tmpl != nil {
			return tmpl.Execute(out, items(view))
		}
		return writeText(out, s.Collection, plan)
	})
}

func items(view listview.PageView[retail.Record]) []any {
	rv := make([]any, len(view.Items))
	for i, r := range view.Items {
		rv[i] = r
	}
	return rv
}

func writeText(out io.Writer, c *retail.Collection, plan listview.Plan[[]string]) error {
	err := texttable.Write(out, texttable.Table{
		Headers:  c.Headers,
		Rows:     texttable.AbbreviateIDs(c.Headers, plan.Rows),
		MaxWidth: texttable.TerminalWidth(out),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%s\n%s\n", plan.Showing, plan.PageText)
	return err
}
