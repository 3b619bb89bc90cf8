package root

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storeops/storectl/internal/backend"
	"github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/common"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	profilecmd "github.com/storeops/storectl/internal/cmd/root/profile"
	"github.com/storeops/storectl/internal/cmd/root/verbs/approve"
	"github.com/storeops/storectl/internal/cmd/root/verbs/collections"
	"github.com/storeops/storectl/internal/cmd/root/verbs/del"
	"github.com/storeops/storectl/internal/cmd/root/verbs/export"
	"github.com/storeops/storectl/internal/cmd/root/verbs/list"
	"github.com/storeops/storectl/internal/cmd/root/verbs/reject"
	"github.com/storeops/storectl/internal/cmd/root/verbs/themes"
	"github.com/storeops/storectl/internal/cmd/root/verbs/view"
	"github.com/storeops/storectl/internal/cmd/root/version"
	"github.com/storeops/storectl/internal/config"
	"github.com/storeops/storectl/internal/iostreams"
	"github.com/storeops/storectl/internal/log"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/profile"
	"github.com/storeops/storectl/internal/theme"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	colorThemeFlagName = "color-theme"
)

var (
	rootLong = normalizers.LongDesc(fmt.Sprintf(`
  %s lists, searches and acts on the records of a store backend: users waiting
  for approval, lost items, credit customers, stock and more.

  Every list is fetched whole and paginated locally. Run '%[1]s collections'
  to see what can be listed.`, meta.CLIName))

	rootShort = fmt.Sprintf("%s manages a store's admin lists", meta.CLIName)
)

// session holds the flag values and the state initialized for one run.
type session struct {
	streams *iostreams.IOStreams
	factory backend.Factory

	configFilePath string
	profile        string
	output         *cmd.FlagEnum
	logLevel       *cmd.FlagEnum
	colorTheme     *cmd.FlagEnum

	cfg      config.Hook
	logger   *slog.Logger
	closeLog func() error
}

func newSession(streams *iostreams.IOStreams, factory backend.Factory) *session {
	if factory == nil {
		factory = backend.DefaultFactory
	}
	return &session{
		streams:        streams,
		factory:        factory,
		configFilePath: config.ExpandDefaultConfigFilePath(),
		profile:        common.DefaultProfile,
		output:         cmd.NewEnum([]string{"json", "yaml", "text"}, "text"),
		logLevel:       cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel),
		colorTheme:     cmd.NewEnum(theme.Available(), ""),
	}
}

func newRootCmd(s *session) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:               meta.CLIName,
		Short:             rootShort,
		Long:              rootLong,
		SilenceErrors:     true,
		PersistentPreRunE: s.initialize,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return s.close()
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.configFilePath, common.ConfigFilePathFlagName, s.configFilePath,
		"Path to the configuration file to load.")

	flags.StringVarP(&s.profile, common.ProfileFlagName, common.ProfileFlagShort, s.profile,
		"Specify the profile to use for this command.")

	flags.VarP(s.output, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(s.output.Allowed, "|")))

	flags.Var(s.logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level written to the log file.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(s.logLevel.Allowed, "|")))

	flags.String(common.BaseURLFlagName, "",
		fmt.Sprintf(`Base URL of the store backend API.
- Config path: [ %s ]
- Default    : [ %s ]`,
			common.BaseURLConfigPath, common.DefaultBaseURL))

	flags.Var(s.colorTheme, colorThemeFlagName,
		fmt.Sprintf(`Color theme of the table browser.
- Config path: [ %s ]
- Default    : [ %s ]
- Allowed    : [ run '%s themes' ]`,
			common.ThemeConfigPath, theme.DefaultName, meta.CLIName))

	_ = rootCmd.RegisterFlagCompletionFunc(common.OutputFlagName, s.output.Complete)
	_ = rootCmd.RegisterFlagCompletionFunc(common.LogLevelFlagName, s.logLevel.Complete)
	_ = rootCmd.RegisterFlagCompletionFunc(colorThemeFlagName, s.colorTheme.Complete)

	if err := addCommands(rootCmd); err != nil {
		return nil, err
	}
	return rootCmd, nil
}

// addCommands adds the root subcommands to the command.
func addCommands(rootCmd *cobra.Command) error {
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(profilecmd.NewProfileCmd())

	for _, build := range []func() (*cobra.Command, error){
		list.NewListCmd,
		view.NewViewCmd,
		approve.NewApproveCmd,
		reject.NewRejectCmd,
		del.NewDeleteCmd,
		export.NewExportCmd,
		collections.NewCollectionsCmd,
		themes.NewThemesCmd,
	} {
		c, err := build()
		if err != nil {
			return err
		}
		rootCmd.AddCommand(c)
	}
	return nil
}

// initialize loads the configuration and builds the logger before any
// subcommand runs.
func (s *session) initialize(c *cobra.Command, _ []string) error {
	// The profile is not part of the configuration, so STORECTL_PROFILE is
	// read here and loses against the --profile flag.
	if !c.Flags().Changed(common.ProfileFlagName) {
		if p, ok := os.LookupEnv(meta.EnvPrefix + "_PROFILE"); ok && p != "" {
			s.profile = p
		}
	}

	cfg, err := config.GetConfig(s.configFilePath, s.profile, config.ExpandDefaultConfigFilePath())
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	s.cfg = cfg

	for path, name := range map[string]string{
		common.OutputConfigPath:   common.OutputFlagName,
		common.LogLevelConfigPath: common.LogLevelFlagName,
		common.BaseURLConfigPath:  common.BaseURLFlagName,
		common.ThemeConfigPath:    colorThemeFlagName,
	} {
		if err := cfg.BindFlag(path, c.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	level, err := log.ParseLevel(cfg.GetString(common.LogLevelConfigPath))
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	logger, closeLog, err := log.New(log.Settings{
		Level:  level,
		File:   cfg.GetString(common.LogFileConfigPath),
		ErrOut: s.streams.ErrOut,
	})
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	s.logger = logger
	s.closeLog = closeLog

	if err := theme.SetCurrent(cfg.GetString(common.ThemeConfigPath)); err != nil {
		return &cmd.ConfigurationError{Err: err}
	}

	ctx := context.WithValue(c.Context(), config.ConfigKey, s.cfg)
	ctx = context.WithValue(ctx, iostreams.StreamsKey, s.streams)
	ctx = context.WithValue(ctx, log.LoggerKey, s.logger)
	ctx = context.WithValue(ctx, backend.FactoryKey, s.factory)
	ctx = context.WithValue(ctx, profile.ProfileManagerKey, profile.NewManager(cfg.Viper))
	ctx = theme.ContextWithPalette(ctx, theme.Current())
	c.SetContext(ctx)

	logger.Debug("command started", "command", c.CommandPath(), "profile", s.profile,
		"config", cfg.GetPath())
	return nil
}

func (s *session) close() error {
	if s.closeLog == nil {
		return nil
	}
	err := s.closeLog()
	s.closeLog = nil
	return err
}

// report prints err for the user and returns the process exit code.
func (s *session) report(err error) int {
	if err == nil {
		return 0
	}

	var execErr *cmd.ExecutionError
	if !errors.As(err, &execErr) {
		fmt.Fprintf(s.streams.ErrOut, "Error: %s\n", err)
		return 1
	}

	format, _ := common.OutputFormatStringToIota(s.output.String())
	if s.cfg != nil {
		format, _ = common.OutputFormatStringToIota(s.cfg.GetString(common.OutputConfigPath))
	}

	attrs := append([]any{"error", execErr.Err}, execErr.Attrs...)
	if format == common.TEXT && s.logger != nil {
		// Mirrored to stderr by the friendly handler.
		s.logger.Error(execErr.Msg, attrs...)
		return 1
	}

	if s.logger != nil {
		log.DisableErrorMirroring()
		s.logger.Error(execErr.Msg, attrs...)
		log.EnableErrorMirroring()
	}
	if format == common.TEXT {
		fmt.Fprintf(s.streams.ErrOut, "Error: %s: %s\n", execErr.Msg, execErr.Err)
		return 1
	}
	out := map[string]any{"error": execErr.Msg, "detail": execErr.Err.Error()}
	if perr := printer.Structured(s.streams.ErrOut, format, out); perr != nil {
		fmt.Fprintf(s.streams.ErrOut, "Error: %s: %s\n", execErr.Msg, execErr.Err)
	}
	return 1
}

// Execute runs the command line against streams and returns the process exit
// code.
func Execute(ctx context.Context, streams *iostreams.IOStreams) int {
	return execute(ctx, streams, nil, os.Args[1:])
}

func execute(ctx context.Context, streams *iostreams.IOStreams, factory backend.Factory, args []string) int {
	cobra.EnableTraverseRunHooks = true

	s := newSession(streams, factory)
	rootCmd, err := newRootCmd(s)
	if err != nil {
		fmt.Fprintf(streams.ErrOut, "Error: %s\n", err)
		return 1
	}
	rootCmd.SetArgs(args)
	rootCmd.SetIn(streams.In)
	rootCmd.SetOut(streams.Out)
	rootCmd.SetErr(streams.ErrOut)

	err = rootCmd.ExecuteContext(ctx)
	code := s.report(err)
	_ = s.close()
	return code
}
