package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openkeys/assetmanifest/internal/schema"
	"github.com/openkeys/assetmanifest/pkg/logger"
	"github.com/openkeys/assetmanifest/pkg/manifest"
	"github.com/openkeys/assetmanifest/pkg/safeio"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate manifest files against the schema and invariants",
		Long: `Validate manifest files against the embedded JSON Schema plus the
structural invariants the schema cannot express (unique ids). An unsupported
schemaVersion is reported as such, never silently accepted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	failures := 0
	for _, arg := range args {
		path, err := safeio.CleanUserPath(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}

		if err := validateFile(cmd, path); err != nil {
			if errors.Is(err, manifest.ErrSchemaVersion) {
				return err
			}
			logger.Error("invalid manifest", logger.String("path", path), logger.Err(err))
			failures++
			continue
		}
		cmd.Printf("%s: ok\n", path)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d manifest(s) failed validation", failures, len(args))
	}
	return nil
}

func validateFile(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Decode first so an unsupported schemaVersion surfaces as its own
	// condition rather than a generic schema finding.
	m, err := manifest.Decode(data)
	if err != nil {
		return err
	}

	res, err := schema.ValidateManifest(m)
	if err != nil {
		return err
	}
	if !res.Valid {
		for _, e := range res.Errors {
			cmd.PrintErrf("%s: %s: %s\n", path, e.Path, e.Message)
		}
		return fmt.Errorf("schema validation failed")
	}
	return nil
}
