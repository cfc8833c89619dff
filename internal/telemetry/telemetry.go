// Package telemetry builds the structured logger every Linker and
// Evaluator diagnostic flows through, and pretty-prints evaluation traces
// for an interactive host — the same interactive/piped branch the teacher
// takes in cmd/funxy/main.go (human-readable output on a TTY, plain
// otherwise), applied here to slog output instead of REPL results.
package telemetry

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/vectorpath/policyengine/internal/config"
	"github.com/vectorpath/policyengine/internal/evaluator"
)

// New builds a slog.Logger writing to w: slog's plain (uncolored) text
// handler when w looks like an interactive terminal and cfg.TraceColor is
// set, a JSON handler otherwise (the machine-readable branch a supervised
// or piped process needs).
func New(w io.Writer, cfg config.EngineConfig) *slog.Logger {
	if IsInteractive(w) && cfg.TraceColor {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// IsInteractive reports whether w is a terminal, the same detection the
// teacher's builtins_term.go performs via go-isatty before deciding to
// colorize output.
func IsInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// RenderTrace pretty-prints an evaluation trace, one line per entry,
// indented by nesting depth, coloring match/no-match green/red when color
// is true — the line-per-value, indent-by-depth rendering the teacher's
// format.go uses for runtime objects, applied to match bookkeeping instead.
func RenderTrace(w io.Writer, trace []evaluator.TraceEntry, color bool) error {
	for _, entry := range trace {
		if _, err := io.WriteString(w, renderEntry(entry, color)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func renderEntry(entry evaluator.TraceEntry, color bool) string {
	indent := ""
	for i := 0; i < entry.Depth; i++ {
		indent += "  "
	}

	label := entry.Kind
	if entry.Path != "" {
		label = entry.Path + " (" + entry.Kind + ")"
	}

	status := "no-match"
	if entry.Matched {
		status = "match"
	}

	if !color {
		return indent + label + ": " + status
	}

	c := ansiRed
	if entry.Matched {
		c = ansiGreen
	}
	return indent + label + ": " + c + status + ansiReset
}
