package collections

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	cmdpkg "github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	"github.com/storeops/storectl/internal/cmd/output/texttable"
	"github.com/storeops/storectl/internal/cmd/root/verbs"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/retail"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Collections
)

var (
	collectionsShort = "List the collections the other commands accept"

	collectionsLong = normalizers.LongDesc(`
Print every collection with its aliases, default search mode and the row
actions it supports.`)

	collectionsExamples = normalizers.Examples(fmt.Sprintf(`
		# Table of collections
		%[1]s collections
		# Collections as YAML
		%[1]s collections -o yaml
		`, meta.CLIName))
)

// Info describes one collection.
type Info struct {
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases"`
	Title      string   `json:"title"`
	SearchMode string   `json:"search_mode"`
	Actions    []string `json:"actions"`
}

func NewCollectionsCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     Verb.String(),
		Short:   collectionsShort,
		Long:    collectionsLong,
		Example: collectionsExamples,
		Aliases: []string{"cols"},
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			infos := describe(retail.All())
			return printer.Render(helper, infos, func(out io.Writer) error {
				return writeText(out, infos)
			})
		},
	}
	return cmd, nil
}

func describe(all []*retail.Collection) []Info {
	rv := make([]Info, 0, len(all))
	for _, c := range all {
		info := Info{
			Name:       c.Name,
			Aliases:    append([]string{}, c.Aliases...),
			Title:      c.Title,
			SearchMode: c.DefaultMode.String(),
			Actions:    []string{},
		}
		for _, a := range c.Actions {
			info.Actions = append(info.Actions, fmt.Sprintf("%s (%s)", a.Name, a.Key))
		}
		rv = append(rv, info)
	}
	return rv
}

func writeText(out io.Writer, infos []Info) error {
	rows := make([][]string, len(infos))
	for i, info := range infos {
		actions := strings.Join(info.Actions, ", ")
		if actions == "" {
			actions = "-"
		}
		rows[i] = []string{info.Name, strings.Join(info.Aliases, ", "), info.Title, info.SearchMode, actions}
	}
	return texttable.Write(out, texttable.Table{
		Headers:  []string{"NAME", "ALIASES", "TITLE", "SEARCH", "ACTIONS"},
		Rows:     rows,
		MaxWidth: texttable.TerminalWidth(out),
	})
}
