package observability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level and keeps running
// counters that `genposter serve` reports on shutdown.
type LogHooks struct {
	logger *log.Logger

	renders  atomic.Int64
	failures atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	requests atomic.Int64
}

// NewLogHooks creates hooks that log to logger (log.Default() when nil).
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

// Register installs h as pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnRenderStart(_ context.Context, seed int64, layers int) {
	h.logger.Debug("render started", "seed", seed, "layers", layers)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, seed int64, d time.Duration, err error) {
	h.renders.Add(1)
	if err != nil {
		h.failures.Add(1)
		h.logger.Debug("render failed", "seed", seed, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render finished", "seed", seed, "duration", d)
}

func (h *LogHooks) OnEncodeComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("encode failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("encoded poster", "format", format, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.hits.Add(1)
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.misses.Add(1)
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.requests.Add(1)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("request", "method", method, "route", route, "status", status, "duration", d)
}

// Stats is a snapshot of the counters.
type Stats struct {
	Renders   int64
	Failures  int64
	CacheHits int64
	CacheMiss int64
	Requests  int64
}

// Stats returns the current counters.
func (h *LogHooks) Stats() Stats {
	return Stats{
		Renders:   h.renders.Load(),
		Failures:  h.failures.Load(),
		CacheHits: h.hits.Load(),
		CacheMiss: h.misses.Load(),
		Requests:  h.requests.Load(),
	}
}
