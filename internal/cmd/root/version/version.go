package version

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	ShowCommitFlagName   = "show-commit"
	ShowCommitConfigPath = "version." + ShowCommitFlagName
)

var (
	// VERSION may be overridden by the linker.
	VERSION = "dev"
	// COMMIT may be overridden by the linker.
	COMMIT = "unknown"

	versionUse   = "version"
	versionShort = fmt.Sprintf("Print the %s version", meta.CLIName)
	versionLong  = normalizers.LongDesc(`
The version command prints the version and other optional information`)
	versionExample = normalizers.Examples(fmt.Sprintf(`
		# Print the simple version
		%[1]s version
		# Print the version and the git commit hash
		%[1]s version --show-commit
		`, meta.CLIName))
)

// Info is what the version command prints.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// Build a new instance of the version command
func NewVersionCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     versionUse,
		Short:   versionShort,
		Long:    versionLong,
		Example: versionExample,
		Args:    cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return bindFlags(cmd.BuildHelper(c, args))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args))
		},
	}

	rv.Flags().Bool(ShowCommitFlagName, false,
		fmt.Sprintf("True to show the git commit hash when built.\n (config path = '%s')", ShowCommitConfigPath))

	return rv
}

func bindFlags(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	f := helper.GetCmd().Flags().Lookup(ShowCommitFlagName)
	return cfg.BindFlag(ShowCommitConfigPath, f)
}

func run(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	info := Info{Version: VERSION}
	if cfg.GetBool(ShowCommitConfigPath) {
		info.Commit = COMMIT
	}

	return printer.Render(helper, info, func(out io.Writer) error {
		return printText(info, out)
	})
}

func printText(info Info, out io.Writer) error {
	if info.Commit != "" {
		_, err := fmt.Fprintf(out, "%s (%s)\n", info.Version, info.Commit)
		return err
	}
	_, err := fmt.Fprintln(out, info.Version)
	return err
}
