package profile

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	"github.com/storeops/storectl/internal/cmd/output/texttable"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/profile"
	"github.com/storeops/storectl/internal/util/normalizers"
)

var (
	profileUse   = "profiles"
	profileShort = "List the profiles of the configuration file"
	profileLong  = normalizers.LongDesc(`
Each profile of the configuration file points at one store backend. The
profile in use is picked with --profile or the STORECTL_PROFILE variable.`)
	profileExamples = normalizers.Examples(fmt.Sprintf(`
		# Show every profile and the backend it talks to
		%[1]s profiles
		`, meta.CLIName))
)

func NewProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:     profileUse,
		Short:   profileShort,
		Long:    profileLong,
		Example: profileExamples,
		Aliases: []string{"profile"},
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args))
		},
	}
}

func run(helper cmd.Helper) error {
	mgr, ok := helper.GetContext().Value(profile.ProfileManagerKey).(profile.Manager)
	if !ok || mgr == nil {
		return cmd.PrepareExecutionErrorMsg(helper, "no profile manager found in context")
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	names := mgr.Names()
	summaries := make([]profile.Summary, 0, len(names))
	for _, name := range names {
		s, err := mgr.Summarize(name)
		if err != nil {
			return cmd.PrepareExecutionErrorWithHelper(helper, "failed to read profile "+name, err)
		}
		s.Current = name == cfg.GetProfile()
		summaries = append(summaries, s)
	}

	return printer.Render(helper, summaries, func(out io.Writer) error {
		rows := make([][]string, len(summaries))
		for i, s := range summaries {
			marker := ""
			if s.Current {
				marker = "*"
			}
			token := "no"
			if s.HasToken {
				token = "yes"
			}
			rows[i] = []string{marker, s.Name, s.BaseURL, token}
		}
		return texttable.Write(out, texttable.Table{
			Headers:  []string{"", "PROFILE", "BASE URL", "TOKEN"},
			Rows:     rows,
			MaxWidth: texttable.TerminalWidth(out),
		})
	})
}
