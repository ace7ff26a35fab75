// Package logger configures the process-wide structured logger and
// provides component-scoped loggers plus context plumbing for request
// correlation across the bot, dataset and channel layers.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	initOnce sync.Once
	levelVar slog.LevelVar

	// L is the base logger; components derive from it.
	L *slog.Logger

	// Bot logs Telegram transport and handler events.
	Bot *slog.Logger
	// Table logs dataset loading and cache refresh events.
	Table *slog.Logger
	// Nav logs navigation state machine events.
	Nav *slog.Logger
	// Access logs channel grant/revoke lifecycle events.
	Access *slog.Logger
	// Ops logs health/metrics endpoint events.
	Ops *slog.Logger
)

func init() {
	// Components stay usable before Init (tests, early startup); Init
	// replaces them with the configured handler.
	L = slog.Default()
	wireComponents()
}

// Options selects output level and format for Init.
type Options struct {
	Level  string
	Format string
}

// Init configures the global structured logger. It may be called only once;
// later calls are no-ops.
func Init(opts Options) error {
	initOnce.Do(func() {
		levelVar.Set(selectLevel(opts.Level))

		hopts := &slog.HandlerOptions{Level: &levelVar}
		var handler slog.Handler
		switch strings.ToLower(strings.TrimSpace(opts.Format)) {
		case "text", "kv", "pretty":
			handler = slog.NewTextHandler(os.Stdout, hopts)
		default:
			handler = slog.NewJSONHandler(os.Stdout, hopts)
		}

		L = slog.New(handler)
		slog.SetDefault(L)
		wireComponents()
	})
	return nil
}

func wireComponents() {
	Bot = L.With("component", "bot")
	Table = L.With("component", "table")
	Nav = L.With("component", "nav")
	Access = L.With("component", "access")
	Ops = L.With("component", "ops")
}

// Component constructs a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	if L == nil {
		return slog.Default()
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return L
	}
	return L.With("component", trimmed)
}

func selectLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
