// Package collection holds what the collection verbs share: resolving the
// collection argument, the list flags and how they combine with the
// configuration, and loading records into a list binding.
package collection

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/storeops/storectl/internal/backend"
	cmdpkg "github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/common"
	"github.com/storeops/storectl/internal/cmd/output/printer"
	"github.com/storeops/storectl/internal/config"
	"github.com/storeops/storectl/internal/listview"
	"github.com/storeops/storectl/internal/retail"
)

const (
	MatchSubstring = "substring"
	MatchFuzzy     = "fuzzy"

	StrictFlagName = "strict"
	YesFlagName    = "yes"
	YesFlagShort   = "y"
)

// Session is everything a collection verb needs once its arguments are
// resolved.
type Session struct {
	Helper     cmdpkg.Helper
	Config     config.Hook
	Logger     *slog.Logger
	API        backend.API
	Collection *retail.Collection
}

// Open resolves the collection named by the first argument and connects to
// the backend.
func Open(helper cmdpkg.Helper) (*Session, error) {
	args := helper.GetArgs()
	if len(args) == 0 {
		return nil, &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("a collection is required, must be one of %v", retail.Names()),
		}
	}
	return OpenNamed(helper, args[0])
}

// OpenNamed is Open for a collection named some other way than the first
// argument.
func OpenNamed(helper cmdpkg.Helper, name string) (*Session, error) {
	c, err := retail.Lookup(name)
	if err != nil {
		return nil, &cmdpkg.ConfigurationError{Err: err}
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return nil, err
	}
	api, err := helper.GetBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		Helper:     helper,
		Config:     cfg,
		Logger:     logger,
		API:        api,
		Collection: c,
	}, nil
}

// CompleteNames offers collection names for the first positional argument.
func CompleteNames(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return retail.Names(), cobra.ShellCompDirectiveNoFileComp
}

// AddSearchFlags registers the flags that shape the filtered record set.
func AddSearchFlags(flags *pflag.FlagSet) {
	flags.StringP(common.SearchFlagName, common.SearchFlagShort, "",
		"Only show records whose fields contain this text (case-insensitive).")

	flags.Int(common.PageSizeFlagName, 0, fmt.Sprintf(`Records per page.
- Config path: [ %s | %s ]
- Default    : [ %d ]`,
		common.CollectionConfigPath("<collection>", common.PageSizeFlagName), common.PageSizeConfigPath,
		common.DefaultPageSize))

	mode := cmdpkg.NewEnum([]string{listview.ModeExclude.String(), listview.ModeRank.String()}, "")
	flags.Var(mode, common.SearchModeFlagName, fmt.Sprintf(`What happens to records that do not match --search.
- exclude: hide them
- rank   : list them after the matches
- Config path: [ %s ]
- Default    : [ depends on the collection ]`,
		common.CollectionConfigPath("<collection>", common.SearchModeFlagName)))

	match := cmdpkg.NewEnum([]string{MatchSubstring, MatchFuzzy}, "")
	flags.Var(match, common.MatchFlagName, fmt.Sprintf(`How --search is matched against record fields.
- Config path: [ %s ]
- Allowed    : [ %s ]`, common.MatchConfigPath, strings.Join(match.Allowed, "|")))
}

// AddStrictFlag registers --strict, which turns a failed fetch into an error
// instead of an empty list.
func AddStrictFlag(flags *pflag.FlagSet) {
	flags.Bool(StrictFlagName, false, "Fail when the collection cannot be loaded instead of printing an empty list.")
}

// ControllerOptions combines the search flags of command with the
// configuration of collection c. Flags win over lists.<collection>.* keys,
// which win over list.* keys and the collection defaults.
func ControllerOptions(command *cobra.Command, cfg config.Hook, c *retail.Collection) ([]listview.Option[retail.Record], error) {
	flags := command.Flags()

	size := config.CollectionInt(cfg, c.Name, common.PageSizeFlagName, common.DefaultPageSize)
	if flags.Changed(common.PageSizeFlagName) {
		v, err := flags.GetInt(common.PageSizeFlagName)
		if err != nil {
			return nil, err
		}
		if v < 1 {
			return nil, &cmdpkg.ConfigurationError{
				Err: fmt.Errorf("--%s must be at least 1, got %d", common.PageSizeFlagName, v),
			}
		}
		size = v
	}

	mode := c.DefaultMode
	modeValue := flagString(flags, common.SearchModeFlagName)
	if modeValue == "" {
		modeValue = config.CollectionString(cfg, c.Name, common.SearchModeFlagName)
	}
	if modeValue != "" {
		m, err := listview.ParseSearchMode(modeValue)
		if err != nil {
			return nil, &cmdpkg.ConfigurationError{Err: err}
		}
		mode = m
	}

	opts := []listview.Option[retail.Record]{
		listview.WithPageSize[retail.Record](size),
		listview.WithSearchMode[retail.Record](mode),
	}

	matchValue := flagString(flags, common.MatchFlagName)
	if matchValue == "" {
		matchValue = config.CollectionString(cfg, c.Name, common.MatchFlagName)
	}
	switch strings.ToLower(strings.TrimSpace(matchValue)) {
	case "", MatchSubstring:
	case MatchFuzzy:
		opts = append(opts, listview.WithPredicate(listview.DefaultFuzzyPredicate[retail.Record]()))
	default:
		return nil, &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("invalid match %q, must be one of %v", matchValue, []string{MatchSubstring, MatchFuzzy}),
		}
	}
	return opts, nil
}

func flagString(flags *pflag.FlagSet, name string) string {
	f := flags.Lookup(name)
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f.Value.String())
}

// SearchTerm returns the --search value.
func SearchTerm(command *cobra.Command) string {
	return flagString(command.Flags(), common.SearchFlagName)
}

// Binding builds a list binding for the session's collection configured from
// the flags of the running command.
func (s *Session) Binding() (*listview.Binding[retail.Record, []string], error) {
	opts, err := ControllerOptions(s.Helper.GetCmd(), s.Config, s.Collection)
	if err != nil {
		return nil, err
	}
	ctrl := listview.New(opts...)
	ctrl.SetSearchTerm(SearchTerm(s.Helper.GetCmd()))

	b := listview.NewBinding(ctrl, retail.Columns, retail.Record.RecordID)
	b.SetSource(s.Collection.Source(s.API))
	retail.Bind(b, s.Collection, s.API)
	return b, nil
}

// Load fills b from the backend. A failed fetch leaves the list empty and is
// logged; with --strict it is returned as an execution error instead.
func (s *Session) Load(b *listview.Binding[retail.Record, []string]) error {
	ctx := s.Helper.GetContext()
	err := b.Reload(ctx)
	if err == nil {
		s.Logger.Debug("collection loaded", "collection", s.Collection.Name,
			"records", b.Controller().Len())
		return nil
	}

	strict, _ := s.Helper.GetCmd().Flags().GetBool(StrictFlagName)
	if strict {
		return cmdpkg.PrepareExecutionErrorWithHelper(s.Helper,
			fmt.Sprintf("failed to load %s", s.Collection.Name), err,
			"collection", s.Collection.Name)
	}
	s.Logger.Error("failed to load collection, showing an empty list",
		"collection", s.Collection.Name, "error", err)
	return nil
}

// AddYesFlag registers --yes for verbs that ask before acting.
func AddYesFlag(flags *pflag.FlagSet) {
	flags.BoolP(YesFlagName, YesFlagShort, false, "Skip the confirmation prompt.")
}

// ActionResult is printed after a row action succeeds.
type ActionResult struct {
	Collection string `json:"collection"`
	Action     string `json:"action"`
	ID         string `json:"id"`
}

// RunAction submits action for record id of the session's collection and
// prints the result. Destructive actions ask for confirmation unless --yes
// was given.
func (s *Session) RunAction(action listview.Action, id string, in retail.ActionInput) error {
	spec, ok := s.Collection.Action(string(action))
	if !ok {
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("%w: %s has no %s action", retail.ErrUnsupportedAction, s.Collection.Name, action),
		}
	}
	if spec.NeedsReason && strings.TrimSpace(in.Reason) == "" {
		return &cmdpkg.ConfigurationError{Err: fmt.Errorf("a --reason is required to %s", spec.Label)}
	}
	if spec.Destructive {
		desc := fmt.Sprintf("%s record %s", s.Collection.Name, id)
		if err := cmdpkg.ConfirmAction(s.Helper, spec.Label, desc); err != nil {
			return err
		}
	}

	err := s.Collection.Do(s.Helper.GetContext(), s.API, action, id, in)
	if err != nil {
		var verr *retail.ValidationError
		switch {
		case errors.As(err, &verr):
			return &cmdpkg.ConfigurationError{Err: err}
		case backend.IsUnauthorized(err):
			return cmdpkg.PrepareExecutionErrorWithHelper(s.Helper,
				fmt.Sprintf("not allowed to %s %s, check the backend token of profile %s",
					spec.Label, id, s.Config.GetProfile()), err,
				"collection", s.Collection.Name, "id", id)
		case backend.IsNotFound(err):
			return cmdpkg.PrepareExecutionErrorWithHelper(s.Helper,
				fmt.Sprintf("record %s not found in %s", id, s.Collection.Name), err)
		default:
			return cmdpkg.PrepareExecutionErrorWithHelper(s.Helper,
				fmt.Sprintf("failed to %s %s", spec.Label, id), err,
				"collection", s.Collection.Name, "id", id)
		}
	}
	s.Logger.Info("row action submitted", "collection", s.Collection.Name, "action", string(action), "id", id)

	result := ActionResult{Collection: s.Collection.Name, Action: string(action), ID: id}
	return printer.Render(s.Helper, result, func(out io.Writer) error {
		_, err := fmt.Fprintf(out, "%s %s in %s\n", spec.PastTense(), id, s.Collection.Name)
		return err
	})
}
