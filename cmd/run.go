package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tcrun.dev/pkg/tcrun/internal/domain"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// errTestsFailed makes the process exit non-zero when a test did not pass.
var errTestsFailed = errors.New("some tests failed")

var runParallelFlag int

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "run [names...]",
		Short:        "Run the configured tests",
		Long:         runLongDescription,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := loadTests()
			if err != nil {
				return err
			}

			project := loadProject()

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := workflow.Run(ctx, domain.RunArgs{
				Project: project,
				Binary:  checkBinary(project.BinaryPath),
				Options: buildRunOptions(),
				Tests:   tests,
				Names:   args,
				Reports: m.Path(viper.GetString(outputFlagName)),
			})
			if err != nil {
				return err
			}

			if passed, failed := report.Summary(); failed > 0 {
				return fmt.Errorf("%w: %d of %d", errTestsFailed, failed, passed+failed)
			}

			return nil
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of tests run in parallel (0: one per CPU)")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)
}

// commandContext returns the command's context, or Background when it has none.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
