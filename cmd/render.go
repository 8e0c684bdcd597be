package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkeys/assetmanifest/internal/render"
	"github.com/openkeys/assetmanifest/pkg/logger"
	"github.com/openkeys/assetmanifest/pkg/manifest"
	"github.com/openkeys/assetmanifest/pkg/safeio"
)

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render a manifest as a markdown index page",
		Long: `Render a manifest into the markdown index published next to it. Output
goes to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}
	cmd.Flags().String("title", "Assets", "Page title")
	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	path, err := safeio.CleanUserPath(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	out, err := render.Index(m, title)
	if err != nil {
		return err
	}

	target, _ := cmd.Flags().GetString("output")
	if target == "" {
		cmd.Print(out)
		return nil
	}
	target, err = safeio.CleanUserPath(target)
	if err != nil {
		return err
	}
	if err := safeio.WriteFileAtomic(target, []byte(out)); err != nil {
		return err
	}
	logger.Info("index rendered", logger.String("path", target))
	return nil
}
