// Package logging builds the structured logger shared by all sdkgen commands
// and the warning policy that decides whether a warning aborts a run.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"sdkgen/internal/sdkerr"
)

// Config selects the logger's level, encoding and destination.
type Config struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	Output string `yaml:"output" validate:"omitempty,oneof=stdout stderr"`
}

// New returns a logger writing to the configured stream. Every entry carries
// the tool name and a per-run ID so interleaved CI logs can be separated.
func New(cfg Config, tool string) *log.Logger {
	var out io.Writer = os.Stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		out = os.Stdout
	}
	return NewWithWriter(cfg, tool, out)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg Config, tool string, out io.Writer) *log.Logger {
	var w log.Writer
	switch strings.ToLower(cfg.Format) {
	case "json":
		w = &log.IOWriter{Writer: out}
	default:
		w = &log.ConsoleWriter{
			Writer:         out,
			QuoteString:    true,
			EndWithMessage: true,
		}
	}

	return &log.Logger{
		Level:   parseLevel(cfg.Level),
		Writer:  w,
		Context: log.NewContext(nil).Str("tool", tool).Str("run", uuid.New().String()).Value(),
	}
}

// parseLevel defaults to info when the level is empty or unknown.
func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

// Warnings reports recoverable problems. In strict mode the first warning
// becomes an error carrying the given exit status.
type Warnings struct {
	Logger *log.Logger
	Strict bool
	Count  int
}

// Warn logs the message and, in strict mode, returns it as an error.
func (w *Warnings) Warn(code int, format string, args ...any) error {
	if w == nil {
		return nil
	}
	w.Count++
	msg := fmt.Sprintf(format, args...)
	if w.Logger != nil {
		w.Logger.Warn().Int("code", code).Msg(msg)
	}
	if w.Strict {
		return sdkerr.New(sdkerr.KindWarning, "%s", msg).WithCode(code)
	}
	return nil
}
