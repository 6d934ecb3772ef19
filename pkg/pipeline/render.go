package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/export"
	"github.com/matzehuels/genposter/pkg/observability"
	"github.com/matzehuels/genposter/pkg/poster"
)

// Encode converts a raster into each requested format.
func Encode(ctx context.Context, r *poster.Raster, formats []string, opts export.Options) (map[string][]byte, error) {
	if r == nil || r.Image == nil {
		return nil, errors.New(errors.ErrCodeInternal, "nothing to encode")
	}
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		data, err := export.Bytes(r.Image, format, opts)
		observability.Pipeline().OnEncodeComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
