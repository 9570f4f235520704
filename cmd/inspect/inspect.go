// cmd/inspect/inspect.go

package inspect

import (
	"github.com/spf13/cobra"
)

// InspectCmd groups the read-only inspection operations.
var InspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Inspect the deployment without changing it",
	Aliases: []string{"show"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	InspectCmd.AddCommand(configCmd)
}
