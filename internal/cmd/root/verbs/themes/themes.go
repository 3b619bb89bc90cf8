package themes

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cmdpkg "github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	"github.com/storeops/storectl/internal/cmd/output/texttable"
	"github.com/storeops/storectl/internal/cmd/root/verbs"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/theme"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Themes
)

var (
	themesShort = "List the color themes of the table browser"

	themesLong = normalizers.LongDesc(`
Print every color theme accepted by --color-theme and the theme config key,
with its primary and accent colors. The active theme is marked.`)

	themesExamples = normalizers.Examples(fmt.Sprintf(`
		# Table of themes
		%[1]s themes
		# Browse with one of them
		%[1]s view --color-theme dracula
		`, meta.CLIName))
)

// Info describes one theme.
type Info struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Primary     string `json:"primary"`
	Accent      string `json:"accent"`
	Current     bool   `json:"current"`
}

func NewThemesCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     Verb.String(),
		Short:   themesShort,
		Long:    themesLong,
		Example: themesExamples,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			infos := describe(theme.Available(), theme.Current().Name)
			return printer.Render(helper, infos, func(out io.Writer) error {
				return writeText(out, infos)
			})
		},
	}
	return cmd, nil
}

func describe(names []string, current string) []Info {
	rv := make([]Info, 0, len(names))
	for _, name := range names {
		p, ok := theme.Get(name)
		if !ok {
			continue
		}
		rv = append(rv, Info{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Primary:     p.Color(theme.ColorPrimary).Light,
			Accent:      p.Color(theme.ColorAccent).Light,
			Current:     p.Name == current,
		})
	}
	return rv
}

func writeText(out io.Writer, infos []Info) error {
	rows := make([][]string, len(infos))
	for i, info := range infos {
		mark := ""
		if info.Current {
			mark = "*"
		}
		rows[i] = []string{mark, info.Name, info.DisplayName, info.Primary, info.Accent}
	}
	return texttable.Write(out, texttable.Table{
		Headers:  []string{"", "NAME", "DISPLAY NAME", "PRIMARY", "ACCENT"},
		Rows:     rows,
		MaxWidth: texttable.TerminalWidth(out),
	})
}
