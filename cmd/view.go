package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"tcrun.dev/pkg/tcrun/internal/domain"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View the last saved test report",
		Long:  "View the last test report saved in a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(outputFlagName))
			return workflow.View(commandContext(cmd), domain.ViewArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
