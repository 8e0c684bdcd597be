// Package updater orchestrates one manifest update run: it takes a located
// release, downloads and hashes its assets, resolves their metadata, merges
// each asset class into its manifest, validates the result, and writes it
// atomically.
package updater

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openkeys/assetmanifest/internal/release"
	"github.com/openkeys/assetmanifest/internal/schema"
	"github.com/openkeys/assetmanifest/pkg/logger"
	"github.com/openkeys/assetmanifest/pkg/manifest"
	"github.com/openkeys/assetmanifest/pkg/metadata"
)

// Downloader fetches the byte stream of one release asset.
// *release.Client satisfies it.
type Downloader interface {
	Download(asset release.Asset) (io.ReadCloser, error)
}

// Options configures a run.
type Options struct {
	DictsManifestPath   string
	LayoutsManifestPath string
	MetadataPath        string
	Workers             int
	DryRun              bool
}

// Updater performs manifest updates. Now is replaceable in tests.
type Updater struct {
	source Downloader
	opts   Options
	Now    func() time.Time
}

func New(source Downloader, opts Options) *Updater {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Updater{source: source, opts: opts, Now: time.Now}
}

// Run updates both manifests from the given release. A class with no assets
// in the release leaves its manifest untouched.
func (u *Updater) Run(ctx context.Context, rel *release.Release) error {
	table, err := metadata.LoadTable(u.opts.MetadataPath)
	if err != nil {
		return err
	}

	classes := []struct {
		class metadata.Class
		path  string
	}{
		{metadata.ClassDictionary, u.opts.DictsManifestPath},
		{metadata.ClassLayout, u.opts.LayoutsManifestPath},
	}

	for _, c := range classes {
		assets := filterByClass(rel.Assets, c.class)
		if len(assets) == 0 {
			logger.Info("no assets for class", logger.String("class", string(c.class)))
			continue
		}
		if err := u.updateOne(ctx, c.path, c.class, table, rel.TagName, assets); err != nil {
			return fmt.Errorf("updating %s manifest: %w", c.class, err)
		}
	}
	return nil
}

func (u *Updater) updateOne(ctx context.Context, path string, class metadata.Class, table metadata.Table, tag string, assets []release.Asset) error {
	prior, err := manifest.Load(path)
	if err != nil {
		return err
	}

	resolver := metadata.ForClass(class, table)
	batch, err := u.buildBatch(ctx, prior, resolver, tag, assets)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return fmt.Errorf("all %d %s assets failed to download", len(assets), class)
	}

	next, err := manifest.Merge(prior, tag, batch, u.Now())
	if err != nil {
		return err
	}

	res, err := schema.ValidateManifest(next)
	if err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("merged manifest fails schema validation: %+v", res.Errors)
	}

	if u.opts.DryRun {
		logger.Info("dry run, not writing",
			logger.String("path", path), logger.Int("items", len(next.Items)))
		return nil
	}
	if err := manifest.Save(path, next); err != nil {
		return err
	}
	logger.Info("manifest updated",
		logger.String("path", path),
		logger.String("releaseTag", tag),
		logger.Int("items", len(next.Items)))
	return nil
}

// buildBatch downloads and hashes assets concurrently, then resolves metadata
// for the assets that made it. Per-asset failures are logged and skipped; the
// rest of the batch proceeds. Hashing is pure per asset, so parallelism cannot
// reorder the result: the batch keeps release asset order.
func (u *Updater) buildBatch(ctx context.Context, prior *manifest.Manifest, resolver metadata.Resolver, tag string, assets []release.Asset) ([]manifest.Asset, error) {
	type fetched struct {
		asset manifest.Asset
		data  []byte
	}
	built := make([]*fetched, len(assets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Workers)
	for i, asset := range assets {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, err := u.fetch(asset)
			if err != nil {
				logger.Warn("skipping asset", logger.String("filename", asset.Name), logger.Err(err))
				return nil
			}
			if asset.Size > 0 && asset.Size != int64(len(data)) {
				logger.Warn("asset size differs from release metadata",
					logger.String("filename", asset.Name),
					logger.Int64("declared", asset.Size),
					logger.Int("downloaded", len(data)))
			}

			a, err := manifest.NewAsset(asset.Name, asset.URL, bytes.NewReader(data))
			if err != nil {
				logger.Warn("skipping asset", logger.String("filename", asset.Name), logger.Err(err))
				return nil
			}
			mu.Lock()
			built[i] = &fetched{asset: a, data: data}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ids are assigned over the surviving assets only. Merge re-runs the same
	// assignment on the same filenames, so the ids metadata was resolved
	// under are exactly the ids the merged items carry.
	survivors := make([]*fetched, 0, len(assets))
	filenames := make([]string, 0, len(assets))
	for _, f := range built {
		if f != nil {
			survivors = append(survivors, f)
			filenames = append(filenames, f.asset.Filename)
		}
	}
	ids, err := manifest.AssignIDs(prior, filenames)
	if err != nil {
		return nil, err
	}

	out := make([]manifest.Asset, len(survivors))
	for i, f := range survivors {
		f.asset.Meta = resolver.Resolve(ids[i], f.data)
		logger.Debug("asset prepared",
			logger.String("filename", f.asset.Filename),
			logger.String("id", ids[i]),
			logger.String("releaseTag", tag))
		out[i] = f.asset
	}
	return out, nil
}

func (u *Updater) fetch(asset release.Asset) ([]byte, error) {
	rc, err := u.source.Download(asset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func filterByClass(assets []release.Asset, class metadata.Class) []release.Asset {
	var out []release.Asset
	for _, a := range assets {
		if c, ok := metadata.Classify(a.Name); ok && c == class {
			out = append(out, a)
		}
	}
	return out
}
