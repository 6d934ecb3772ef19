package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/genposter/pkg/cache"
	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/observability"
	"github.com/matzehuels/genposter/pkg/poster"
)

const cacheKeyType = "poster"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute validates, renders and encodes one poster, consulting the cache
// for seeded parameters.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	_, _, warnings := opts.Params.Resolve()
	result := &Result{
		ID:        uuid.NewString(),
		Warnings:  warnings,
		Artifacts: make(map[string][]byte),
	}
	for _, w := range warnings {
		r.Logger.Warn(w)
	}

	if opts.Params.Seeded() {
		hash, err := opts.ParamsHash()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash parameters")
		}
		result.ParamsHash = hash
		result.Seed, result.Seeded = *opts.Params.Seed, true
		result.Stats.Layers = opts.Params.Layers

		if !opts.Refresh {
			if artifacts, ok := r.lookup(ctx, hash, opts); ok {
				result.Artifacts = artifacts
				result.CacheInfo.Hit = true
				result.Stats.Bytes = totalBytes(artifacts)
				r.Logger.Debug("served poster from cache", "id", result.ID, "seed", result.Seed)
				return result, nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Render
	renderStart := time.Now()
	var seed int64
	if opts.Params.Seeded() {
		seed = *opts.Params.Seed
	}
	observability.Pipeline().OnRenderStart(ctx, seed, opts.Params.Layers)
	raster, err := poster.Render(opts.Params)
	result.Stats.RenderTime = time.Since(renderStart)
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, seed, result.Stats.RenderTime, err)
		return nil, fmt.Errorf("render: %w", err)
	}
	observability.Pipeline().OnRenderComplete(ctx, raster.Seed, result.Stats.RenderTime, nil)

	// The drawing itself cannot be interrupted; skip encoding for callers
	// that gave up while it ran.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Raster = raster
	result.Seed, result.Seeded = raster.Seed, raster.Seeded
	result.Stats.Layers = opts.Params.Layers

	r.Logger.Info("rendered poster",
		"id", result.ID,
		"seed", raster.Seed,
		"layers", opts.Params.Layers,
		"duration", result.Stats.RenderTime)

	// Encode
	encodeStart := time.Now()
	artifacts, err := Encode(ctx, raster, opts.Formats, opts.ExportOptions())
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.EncodeTime = time.Since(encodeStart)
	result.Stats.Bytes = totalBytes(artifacts)

	r.Logger.Debug("encoded poster",
		"formats", opts.Formats,
		"bytes", result.Stats.Bytes,
		"duration", result.Stats.EncodeTime)

	if result.ParamsHash != "" {
		r.store(ctx, result.ParamsHash, opts, artifacts)
	}
	return result, nil
}

// lookup returns the cached artifacts when every requested format is present.
func (r *Runner) lookup(ctx context.Context, hash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.PosterKey(hash, opts.PosterKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, cacheKeyType)
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, cacheKeyType)
		artifacts[format] = data
	}
	return artifacts, true
}

// store writes artifacts to the cache. Failures are logged, never returned:
// the poster itself was produced successfully.
func (r *Runner) store(ctx context.Context, hash string, opts Options, artifacts map[string][]byte) {
	for format, data := range artifacts {
		key := r.Keyer.PosterKey(hash, opts.PosterKeyOpts(format))
		err := cache.RetryWithBackoff(ctx, func() error {
			return r.Cache.Set(ctx, key, data, cache.TTLPoster)
		})
		if err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}
}

// Batch renders count posters concurrently. With a seed, poster k uses
// seed+k*stride (see poster.Params.SeedStride); without one, each poster
// draws its own seed. Results keep the
// order of k. The first error cancels the remaining renders.
func (r *Runner) Batch(ctx context.Context, opts Options, count, parallel int) ([]*Result, error) {
	if err := errors.ValidateIntRange("count", count, 1, MaxBatch); err != nil {
		return nil, err
	}
	if parallel <= 0 {
		parallel = DefaultParallelism
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	results := make([]*Result, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for k := range count {
		o := opts
		if opts.Params.Seeded() {
			o.Params = opts.Params.WithSeed(*opts.Params.Seed + int64(k)*opts.Params.SeedStride())
			o.validated = false
		}
		g.Go(func() error {
			res, err := r.Execute(ctx, o)
			if err != nil {
				return fmt.Errorf("poster %d: %w", k+1, err)
			}
			results[k] = res
			if o.OnPoster != nil {
				o.OnPoster(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func totalBytes(artifacts map[string][]byte) int {
	n := 0
	for _, data := range artifacts {
		n += len(data)
	}
	return n
}
