// Package cmd provides the root command and CLI setup for tcrun.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"tcrun.dev/pkg/tcrun/internal/adapter"
	"tcrun.dev/pkg/tcrun/internal/controller"
	"tcrun.dev/pkg/tcrun/internal/domain"
)

var reportStore adapter.ReportStore
var processes adapter.ProcessAdapter
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// configFileFlag replaces the default tcrun.yaml.
var configFileFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	reportStore = adapter.NewReportStore()
	processes = adapter.NewLocalProcessAdapter()
	workflow = domain.NewWorkflow(reportStore, processes, ui)
}

const configHelp = `Configuration is read from tcrun.yaml in the current directory (or the
file given with --config). Every key can be overridden with a TCRUN_
environment variable, e.g. TCRUN_PROJECT_BINARY=./build/app.`

const rootLongDescription = `tcrun runs a compiled command-line program against reference test
scenarios and grades it. Batch tests feed stdin and compare stdout, ordered
tests replay a scripted conversation, and every test can run under a
memory checker.

` + configHelp

const runLongDescription = `Run the configured tests (default: all of them) against the binary.
Tests can be selected by name. The command fails when any test fails.

` + configHelp

const listLongDescription = `List the configured tests without running them.

` + configHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tcrun",
		Short: "Test harness for command-line programs",
		Long:  rootLongDescription,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := readConfig(configFileFlag); err != nil {
				return err
			}

			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd builds a fresh root command with its persistent flags.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for test reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVar(&configFileFlag, configFlagName, "", "config file (default ./"+configFileName+")")

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
