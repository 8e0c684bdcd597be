package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openkeys/assetmanifest/internal/release"
	"github.com/openkeys/assetmanifest/internal/updater"
	"github.com/openkeys/assetmanifest/pkg/config"
	"github.com/openkeys/assetmanifest/pkg/logger"
	"github.com/openkeys/assetmanifest/pkg/safeio"
)

func newUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge a release's assets into the manifests",
		Long: `Fetch a GitHub release, hash its dictionary (.dict) and layout (.json)
assets, and merge them into the corresponding manifests. Ids stay stable
across releases and curated metadata is never overwritten.

The release is selected by --release-tag, by --tag-pattern (newest matching
tag), or defaults to the latest release.`,
		Args: cobra.NoArgs,
		RunE: runUpdate,
	}

	cmd.Flags().String("owner", "", "GitHub repository owner")
	cmd.Flags().String("repo", "", "GitHub repository name")
	cmd.Flags().String("release-tag", "", "Exact release tag (default: latest release)")
	cmd.Flags().String("tag-pattern", "", "Glob pattern for release tags, e.g. 'v*'")
	cmd.Flags().String("dicts-manifest", "", "Path to the dictionaries manifest")
	cmd.Flags().String("layouts-manifest", "", "Path to the layouts manifest")
	cmd.Flags().String("dicts-metadata", "", "Path to the dictionaries metadata table")
	cmd.Flags().Int("workers", 0, "Concurrent asset downloads (default from config)")
	cmd.Flags().Bool("dry-run", false, "Merge and validate without writing")

	return cmd
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	owner := stringFlagOr(flags, "owner", cfg.Repo.Owner)
	repo := stringFlagOr(flags, "repo", cfg.Repo.Name)
	if owner == "" || repo == "" {
		return fmt.Errorf("repository not configured: pass --owner and --repo or set repo.owner/repo.name")
	}

	opts := updater.Options{
		DictsManifestPath:   stringFlagOr(flags, "dicts-manifest", cfg.Manifests.Dicts),
		LayoutsManifestPath: stringFlagOr(flags, "layouts-manifest", cfg.Manifests.Layouts),
		MetadataPath:        stringFlagOr(flags, "dicts-metadata", cfg.Manifests.DictsMetadata),
		Workers:             cfg.Update.Workers,
	}
	if w, _ := flags.GetInt("workers"); w > 0 {
		opts.Workers = w
	}
	opts.DryRun, _ = flags.GetBool("dry-run")

	for _, p := range []*string{&opts.DictsManifestPath, &opts.LayoutsManifestPath, &opts.MetadataPath} {
		clean, err := safeio.CleanUserPath(*p)
		if err != nil {
			return fmt.Errorf("%s: %w", *p, err)
		}
		*p = clean
	}

	client := release.NewClient(owner, repo, config.Token())

	tag, _ := flags.GetString("release-tag")
	pattern := stringFlagOr(flags, "tag-pattern", cfg.Update.TagPattern)

	var rel *release.Release
	switch {
	case tag != "":
		rel, err = client.ByTag(tag)
	case pattern != "":
		rel, err = client.ByTagPattern(pattern)
	default:
		rel, err = client.Latest()
	}
	if err != nil {
		return err
	}

	logger.Info("processing release",
		logger.String("releaseTag", rel.TagName),
		logger.Int("assets", len(rel.Assets)))

	return updater.New(client, opts).Run(cmd.Context(), rel)
}

// stringFlagOr returns the flag value when set, otherwise the fallback.
func stringFlagOr(flags *pflag.FlagSet, name, fallback string) string {
	if v, _ := flags.GetString(name); v != "" {
		return v
	}
	return fallback
}
