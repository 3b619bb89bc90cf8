package reject

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
	Verb = verbs.Reject

	reasonFlagName = "reason"
)

var (
	rejectUse = Verb.String() + " <collection> <id>"

	rejectShort = "Reject a pending user or commodity request"

	rejectLong = normalizers.LongDesc(`
Use reject to turn down a record that is waiting for a decision. A --reason
is required and is sent to the backend with the rejection. You are asked to
type 'yes' first unless --yes is given.`)

	rejectExamples = normalizers.Examples(fmt.Sprintf(`
		# Reject a duplicate registration
		%[1]s reject pending-approvals 12 --reason "duplicate account"
		# Reject a commodity request without the prompt
		%[1]s reject commodity-requests 7 --reason "out of budget" --yes
		`, meta.CLIName))
)

func NewRejectCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:               rejectUse,
		Short:             rejectShort,
		Long:              rejectLong,
		Example:           rejectExamples,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: collection.CompleteNames,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			yes, _ := c.Flags().GetBool(collection.YesFlagName)
			cmdpkg.SetAutoApprove(c, yes)
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			s, err := collection.Open(helper)
			if err != nil {
				return err
			}
			reason, _ := c.Flags().GetString(reasonFlagName)
			return s.RunAction(retail.ActionReject, args[1], retail.ActionInput{Reason: reason})
		},
	}
	cmd.Flags().StringP(reasonFlagName, "r", "", "Why the record is rejected (required, at most 500 characters).")
	collection.AddYesFlag(cmd.Flags())
	return cmd, nil
}
