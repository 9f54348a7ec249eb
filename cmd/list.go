package cmd

import (
	"github.com/spf13/cobra"

	"tcrun.dev/pkg/tcrun/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured tests",
		Long:  listLongDescription,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			tests, err := loadTests()
			if err != nil {
				return err
			}

			return workflow.List(commandContext(cmd), domain.ListArgs{Tests: tests})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
