package cmd

import (
	"encoding/json"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/openkeys/assetmanifest/pkg/buildinfo"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show build details")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	info := map[string]string{"version": buildinfo.BinaryVersion}
	if extended {
		if mv := buildinfo.ModuleVersion(); mv != "" {
			info["moduleVersion"] = mv
		}
		info["goVersion"] = runtime.Version()
		info["platform"] = runtime.GOOS + "/" + runtime.GOARCH
	}

	if jsonOutput {
		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(b))
		return nil
	}

	cmd.Printf("assetmanifest %s\n", info["version"])
	if extended {
		cmd.Printf("  go:       %s\n", info["goVersion"])
		cmd.Printf("  platform: %s\n", info["platform"])
		if mv, ok := info["moduleVersion"]; ok {
			cmd.Printf("  module:   %s\n", mv)
		}
	}
	return nil
}
