package approve

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdpkg "github.com/storeops/storectl/internal/cmd"
	"github.com/storeops/storectl/internal/cmd/root/verbs"
	"github.com/storeops/storectl/internal/cmd/root/verbs/collection"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/retail"
	"github.com/storeops/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Approve

	noteFlagName = "note"
)

var (
	approveUse = Verb.String() + " <collection> <id>"

	approveShort = "Approve a pending user or commodity request"

	approveLong = normalizers.LongDesc(`
Use approve to accept a record that is waiting for a decision, such as a
registration in pending-approvals or an entry in commodity-requests.`)

	approveExamples = normalizers.Examples(fmt.Sprintf(`
		# Approve a registration
		%[1]s approve pending-approvals 12
		# Approve a commodity request with a note for the requester
		%[1]s approve commodity-requests 7 --note "delivered Friday"
		`, meta.CLIName))
)

func NewApproveCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:               approveUse,
		Short:             approveShort,
		Long:              approveLong,
		Example:           approveExamples,
		Aliases:           []string{"ok"},
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: collection.CompleteNames,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			s, err := collection.Open(helper)
			if err != nil {
				return err
			}
			note, _ := c.Flags().GetString(noteFlagName)
			return s.RunAction(retail.ActionApprove, args[1], retail.ActionInput{Note: note})
		},
	}
	cmd.Flags().String(noteFlagName, "", "Optional note sent with the approval (at most 500 characters).")
	return cmd, nil
}
