// Package pipeline runs the validate → render → encode → cache pipeline that
// the CLI, the web panel and the studio share.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Params:  poster.DefaultParams().WithSeed(42),
//	    Formats: []string{"png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	png := result.Artifacts["png"]
//
// Seeded renders are looked up in the cache before drawing and stored after
// encoding. Unseeded renders always draw.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genposter/pkg/cache"
	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/export"
	"github.com/matzehuels/genposter/pkg/poster"
)

const (
	// DefaultFormat is used when Options.Formats is empty.
	DefaultFormat = export.FormatPNG

	// DefaultParallelism bounds concurrent renders in a batch.
	DefaultParallelism = 4

	// MaxBatch bounds the number of posters in one batch.
	MaxBatch = 500
)

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Params  poster.Params `json:"params"`
	Formats []string      `json:"formats,omitempty"`
	Quality int           `json:"quality,omitempty"`

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// OnPoster is called by Batch as each poster finishes, from the
	// rendering goroutine. It must be safe for concurrent use.
	OnPoster func(*Result) `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies this run in logs, headers and batch file names.
	ID string

	// Raster is nil when every artifact came from the cache.
	Raster *poster.Raster

	// Seed reproduces the poster; Seeded is false for entropy-drawn seeds.
	Seed   int64
	Seeded bool

	// ParamsHash is the content hash of the validated parameters.
	// Empty for unseeded runs.
	ParamsHash string

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings lists unknown style/shape substitutions.
	Warnings []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Layers     int
	RenderTime time.Duration
	EncodeTime time.Duration
	Bytes      int
}

// CacheInfo tracks whether the artifacts came from the cache.
type CacheInfo struct {
	Hit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	_, err := export.ParseFormat(format)
	return err
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	_, err := export.ParseFormats(formats)
	return err
}

// ValidateAndSetDefaults checks the parameters, normalizes formats and
// applies defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	formats, err := export.ParseFormats(o.Formats)
	if err != nil {
		return err
	}
	o.Formats = formats
	if o.Quality != 0 {
		if err := errors.ValidateIntRange("quality", o.Quality, 1, 100); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ParamsHash returns the content hash of the parameters, used as the
// cache key base.
func (o *Options) ParamsHash() (string, error) {
	return cache.HashJSON(o.Params)
}

// PosterKeyOpts returns cache key options for one encoded format.
func (o *Options) PosterKeyOpts(format string) cache.PosterKeyOpts {
	opts := cache.PosterKeyOpts{Format: format}
	if format == export.FormatJPEG {
		opts.Quality = o.Quality
	}
	return opts
}

// ExportOptions returns the encoder options.
func (o *Options) ExportOptions() export.Options {
	return export.Options{Quality: o.Quality}
}
