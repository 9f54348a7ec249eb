package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default tcrun.yaml configuration file",
		Long: `Create a tcrun.yaml in the current working directory holding the current
settings, ready to be edited:

  project      binary, build_dir, test_dir, timeout (seconds), unbuffered
  diagnostics  enabled, tool (valgrind), flags, log_dir
  run          parallel (0: one per CPU), max_output, diff_timeout, poll_interval
  log          filename, level, rotation
  tests        empty list; add entries with name, kind (IO or OrdIO),
               in_file/in_string, exp_file/exp_string or io_file, exit_code

An existing file is never overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("Wrote %s\n", targetPath)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
