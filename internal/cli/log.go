package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modkit/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created,
// e.g. "Loaded 42 mods from 1 directories (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability hooks
// =============================================================================

// registerHooks routes library events to the logger at debug level.
func registerHooks(l *log.Logger) {
	observability.SetLoadHooks(loadLogHooks{l})
	observability.SetCacheHooks(cacheLogHooks{l})
	observability.SetServerHooks(serverLogHooks{l})
}

type loadLogHooks struct{ l *log.Logger }

func (h loadLogHooks) OnScanStart(_ context.Context, dir string) {
	h.l.Debug("Scanning", "dir", dir)
}

func (h loadLogHooks) OnScanComplete(_ context.Context, dir string, mods int, d time.Duration, err error) {
	if err != nil {
		h.l.Debug("Scan failed", "dir", dir, "err", err)
		return
	}
	h.l.Debug("Scanned", "dir", dir, "mods", mods, "took", d.Round(time.Microsecond))
}

func (h loadLogHooks) OnManifest(_ context.Context, path string, mods int, cached bool, err error) {
	if err != nil {
		return // reported by the caller with full context
	}
	h.l.Debug("Manifest", "path", path, "mods", mods, "cached", cached)
}

func (h loadLogHooks) OnTreeBuilt(_ context.Context, nodes, unavailable int, d time.Duration) {
	h.l.Debug("Dependency tree built", "mods", nodes, "unavailable", unavailable, "took", d.Round(time.Microsecond))
}

type cacheLogHooks struct{ l *log.Logger }

func (h cacheLogHooks) OnCacheHit(_ context.Context, kind string)  { h.l.Debug("Cache hit", "kind", kind) }
func (h cacheLogHooks) OnCacheMiss(_ context.Context, kind string) { h.l.Debug("Cache miss", "kind", kind) }
func (h cacheLogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.l.Debug("Cache set", "kind", kind, "bytes", size)
}

type serverLogHooks struct{ l *log.Logger }

func (h serverLogHooks) OnRequest(_ context.Context, id, method, path string) {
	h.l.Debug("Request", "id", id, "method", method, "path", path)
}

func (h serverLogHooks) OnResponse(_ context.Context, id, method, path string, status int, d time.Duration) {
	h.l.Info("Served", "id", id, "method", method, "path", path, "status", status, "took", d.Round(time.Microsecond))
}
