// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across the runtime.
//
// Logs are written to stderr so that search results on stdout stay pipeable.
// The package supports two output formats:
//   - JSON (default): Machine-readable structured logging
//   - Human: Human-readable console output with colors and prefixes
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Logger is the default logger instance.
var Logger *slog.Logger

// OutputFormat represents the log output format
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format
	FormatJSON OutputFormat = iota
	// FormatHuman is a human-readable console format with colors and prefixes
	FormatHuman
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
	level  slog.Level
	format OutputFormat
)

func init() {
	rebuild()
}

// rebuild replaces Logger from the current output, level, and format.
// Callers must hold mu, except during init.
func rebuild() {
	switch format {
	case FormatHuman:
		Logger = slog.New(NewHumanHandler(output, &HumanHandlerOptions{
			Level:     level,
			UseColors: isTerminal(output),
		}))
	default:
		Logger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: level,
		}))
	}
}

// SetLevel configures the logging level.
func SetLevel(l slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	rebuild()
}

// SetFormat sets the log output format.
func SetFormat(f OutputFormat) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	rebuild()
}

// SetLevelAndFormat sets both the log level and format.
func SetLevelAndFormat(l slog.Level, f OutputFormat) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	format = f
	rebuild()
}

// SetOutput redirects log output. Intended for tests and embedding.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// ParseFormat parses "json" or "human".
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "human", "text":
		return FormatHuman, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q (want json or human)", s)
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithCriterion returns a logger with criterion context.
func WithCriterion(name string) *slog.Logger {
	return Logger.With("criterion", name)
}

// SearchContext contains context information for search logging.
type SearchContext struct {
	// RunID identifies one search across its log lines
	RunID string
	// Criterion is the resolved criterion name (required)
	Criterion string
	// Mapper is the transform name, empty for identity
	Mapper string
	// Source describes where the roster came from ("generated", a file path)
	Source string
}

// LogSearchStart logs the start of a search. A negative recordCount means the
// roster size is not known up front and is omitted.
func LogSearchStart(ctx SearchContext, recordCount int) {
	attrs := buildContextAttrs(ctx)
	if recordCount >= 0 {
		attrs = append(attrs, slog.Int("record_count", recordCount))
	}
	Logger.Info("search started", attrs...)
}

// LogSearchEnd logs the completion of a search.
func LogSearchEnd(ctx SearchContext, matched int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("matched", matched),
		slog.Duration("duration", duration),
	)
	Logger.Info("search completed", attrs...)
}

// buildContextAttrs builds slog attributes from a SearchContext.
// Only non-empty fields are included.
func buildContextAttrs(ctx SearchContext) []any {
	attrs := make([]any, 0, 6)
	if ctx.RunID != "" {
		attrs = append(attrs, slog.String("run_id", ctx.RunID))
	}
	attrs = append(attrs, slog.String("criterion", ctx.Criterion))
	if ctx.Mapper != "" {
		attrs = append(attrs, slog.String("mapper", ctx.Mapper))
	}
	if ctx.Source != "" {
		attrs = append(attrs, slog.String("source", ctx.Source))
	}
	return attrs
}

// isTerminal returns true if the writer is a terminal (supports colors)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// HumanHandlerOptions configures the human-readable log handler.
type HumanHandlerOptions struct {
	// Level is the minimum log level to output
	Level slog.Level
	// UseColors enables ANSI color codes
	UseColors bool
}

// HumanHandler is a slog handler that outputs human-readable log messages.
type HumanHandler struct {
	opts   HumanHandlerOptions
	writer io.Writer
	attrs  []slog.Attr
}

// NewHumanHandler creates a new human-readable log handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: slog.LevelInfo}
	}
	return &HumanHandler{
		opts:   *opts,
		writer: w,
	}
}

// Enabled returns true if the handler is enabled for the given level.
func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle outputs a log record in human-readable format.
func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(h.levelPrefix(r.Level, r.Message))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		sb.WriteString(" ")
		sb.WriteString(formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(" ")
		sb.WriteString(formatAttr(a))
		return true
	})

	sb.WriteString("\n")
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &HumanHandler{
		opts:   h.opts,
		writer: h.writer,
		attrs:  merged,
	}
}

// WithGroup returns the handler unchanged; groups are flattened in human output.
func (h *HumanHandler) WithGroup(_ string) slog.Handler {
	return h
}

// levelPrefix returns a prefix for the log level, using ✓ for completion messages.
func (h *HumanHandler) levelPrefix(level slog.Level, message string) string {
	const (
		colorReset  = "\033[0m"
		colorRed    = "\033[31m"
		colorYellow = "\033[33m"
		colorGreen  = "\033[32m"
		colorCyan   = "\033[36m"
	)

	var prefix, color string
	switch {
	case level >= slog.LevelError:
		prefix, color = "✗", colorRed
	case level >= slog.LevelWarn:
		prefix, color = "⚠", colorYellow
	case level >= slog.LevelInfo:
		if strings.Contains(strings.ToLower(message), "completed") {
			prefix, color = "✓", colorGreen
		} else {
			prefix, color = "ℹ", colorCyan
		}
	default:
		prefix, color = "·", colorReset
	}

	if h.opts.UseColors {
		return color + prefix + colorReset
	}
	return prefix
}

// formatAttr formats a single attribute for display.
func formatAttr(a slog.Attr) string {
	switch v := a.Value.Any().(type) {
	case time.Duration:
		return fmt.Sprintf("%s=%s", a.Key, formatDuration(v))
	case float64:
		return fmt.Sprintf("%s=%.2f", a.Key, v)
	default:
		return fmt.Sprintf("%s=%v", a.Key, v)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
