// Package main is the entry point for the roster sync service.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/cmd/roster-sync/app"
	"github.com/stacklok/roster-sync/internal/config"
)

// logSettings reads ROSTER_SYNC_LOG_LEVEL and ROSTER_SYNC_LOG_FORMAT, with LOG_LEVEL
// as a fallback for the level
func logSettings() (level, format string) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.format", "json")

	level = v.GetString("log.level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return level, v.GetString("log.format")
}

// parseLevel maps a level name to a slog.Level. Empty or unknown names give info.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return slog.LevelInfo, true
	case "warning":
		return slog.LevelWarn, true
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, false
	}
	return l, true
}

// newHandler builds the process log handler. Text output is meant for local runs.
func newHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return &traceHandler{Handler: h}
}

// traceHandler adds trace_id and span_id of the active span to each record
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func main() {
	levelName, format := logSettings()
	level, ok := parseLevel(levelName)

	// stderr keeps stdout clean for command output such as reconcile --format json
	slog.SetDefault(slog.New(newHandler(os.Stderr, level, format)))
	if !ok {
		slog.Warn("Invalid log level, using INFO", "value", levelName)
	}

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
