package cmd

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/openkeys/assetmanifest/pkg/buildinfo"
	"github.com/openkeys/assetmanifest/pkg/exitcode"
	"github.com/openkeys/assetmanifest/pkg/logger"
	"github.com/openkeys/assetmanifest/pkg/manifest"
)

// newRootCommand creates a fresh root command instance. The factory lets
// tests build isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assetmanifest",
		Short: "Maintain dictionary and keyboard-layout asset manifests",
		Long: `assetmanifest keeps the published dictionary and keyboard-layout manifests
in sync with GitHub release assets: stable ids, content hashes, and curated
metadata survive every release.

Examples:
   assetmanifest update --owner openkeys --repo assets --tag-pattern 'v*'
   assetmanifest validate docs/dicts-manifest.json
   assetmanifest list docs/layouts-manifest.json`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("assetmanifest {{.Version}}\n")

	return cmd
}

func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newRenderCommand())
	cmd.AddCommand(newVersionCommand())
}

var rootCmd = newRootCommand()

// Execute runs the CLI. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the documented exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, manifest.ErrSchemaVersion):
		return exitcode.SchemaError
	case errors.Is(err, manifest.ErrAmbiguousID), errors.Is(err, manifest.ErrDuplicateID):
		return exitcode.ValidationError
	default:
		return exitcode.GeneralError
	}
}

// initializeLogger sets up the logger based on persistent flags.
func initializeLogger(cmd *cobra.Command) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	useColor := !noColor && !jsonLogs && isatty.IsTerminal(os.Stderr.Fd())
	logger.Initialize(logger.Config{
		Level:    logger.ParseLevel(levelStr),
		UseColor: useColor,
		JSON:     jsonLogs,
	})
}

func init() {
	registerSubcommands(rootCmd)
}
