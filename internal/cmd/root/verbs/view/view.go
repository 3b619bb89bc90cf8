package view

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdpkg "github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/output/tableview"
	"github.com/storeops/storectl/internal/cmd/root/verbs"
	"github.com/storeops/storectl/internal/cmd/root/verbs/collection"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/retail"
	"github.com/storeops/storectl/internal/theme"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.View
)

var (
	viewUse = Verb.String() + " [collection]"

	viewShort = "Browse the store collections interactively"

	viewLong = normalizers.LongDesc(`
Open an interactive table over every collection of the store backend.

Tab switches collection, left and right change page, / searches, a approves,
x rejects and d deletes the selected row where the collection allows it.
Press ? for every key. The optional argument picks the collection shown
first; --search applies to that collection only.`)

	viewExamples = normalizers.Examples(fmt.Sprintf(`
		# Start on the first collection
		%[1]s view
		# Start on the commodity requests, searching for rice
		%[1]s view commodity-requests --search rice
		`, meta.CLIName))
)

// NewViewCmd creates the view command which launches the table browser.
func NewViewCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:               viewUse,
		Short:             viewShort,
		Long:              viewLong,
		Example:           viewExamples,
		Aliases:           []string{"v", "browse"},
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: collection.CompleteNames,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return Browse(helper, name)
		},
	}
	collection.AddSearchFlags(cmd.Flags())
	return cmd, nil
}

// Browse runs the table browser over every collection, starting on the one
// called name, or the first one when name is empty.
func Browse(helper cmdpkg.Helper, name string) error {
	if !helper.GetStreams().IsInteractive() {
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("%s needs a terminal, use '%s list <collection>' instead", Verb, meta.CLIName),
		}
	}

	all := retail.All()
	if name == "" {
		name = all[0].Name
	}
	s, err := collection.OpenNamed(helper, name)
	if err != nil {
		return err
	}

	initial := 0
	pages := make([]*tableview.Page, 0, len(all))
	for i, c := range all {
		opts, err := collection.ControllerOptions(helper.GetCmd(), s.Config, c)
		if err != nil {
			return err
		}
		p := tableview.NewPage(c, c.Source(s.API), opts...)
		retail.Bind(p.Binding, c, s.API)
		if c == s.Collection {
			initial = i
			p.Binding.Controller().SetSearchTerm(collection.SearchTerm(helper.GetCmd()))
		}
		pages = append(pages, p)
	}

	s.Logger.Debug("starting table browser", "collections", len(pages), "initial", s.Collection.Name)
	err = tableview.Run(helper.GetContext(), helper.GetStreams(), pages,
		tableview.WithTitle(meta.CLIName),
		tableview.WithProfileName(s.Config.GetProfile()),
		tableview.WithInitialPage(initial),
		tableview.WithPalette(theme.Current()),
	)
	if err != nil {
		return cmdpkg.PrepareExecutionErrorWithHelper(helper, "table browser failed", err)
	}
	return nil
}
