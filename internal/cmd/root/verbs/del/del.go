package del

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
	Verb = verbs.Delete
)

var (
	deleteUse = Verb.String() + " <collection> <id>"

	deleteShort = "Delete a record"

	deleteLong = normalizers.LongDesc(`
Use delete to remove one record from a collection.

Only collections with a delete row action accept it. You are asked to type
'yes' before the request is sent unless --yes is given.`)

	deleteExamples = normalizers.Examples(fmt.Sprintf(`
		# Delete a lost item report
		%[1]s delete lost-items 42
		# Delete a unit item without the prompt
		%[1]s delete unit-items 17 --yes
		`, meta.CLIName))
)

func NewDeleteCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:               deleteUse,
		Short:             deleteShort,
		Long:              deleteLong,
		Example:           deleteExamples,
		Aliases:           []string{"d", "del", "rm"},
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
			return s.RunAction(retail.ActionDelete, args[1], retail.ActionInput{})
		},
	}
	collection.AddYesFlag(cmd.Flags())
	return cmd, nil
}
