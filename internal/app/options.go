package app

import (
	"log/slog"
	"time"

	"github.com/sufield/todoapi/internal/bg"
	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/logging"
)

// Option configures the services built by New.
type Option func(*settings)

type settings struct {
	undoWindow    time.Duration
	purgeInterval time.Duration
	purgeBatch    int
	logger        *slog.Logger
	runner        bg.Runner
}

func defaultSettings() settings {
	return settings{
		undoWindow:    domain.DefaultUndoWindow,
		purgeInterval: 30 * time.Second,
		purgeBatch:    500,
		logger:        logging.Discard(),
		runner:        bg.Async{},
	}
}

func buildSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithUndoWindow sets how long a soft-deleted item stays restorable.
func WithUndoWindow(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.undoWindow = d
		}
	}
}

// WithPurgeInterval sets how often the reaper sweeps.
func WithPurgeInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.purgeInterval = d
		}
	}
}

// WithPurgeBatch caps how many tombstones one sweep purges.
func WithPurgeBatch(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.purgeBatch = n
		}
	}
}

// WithLogger sets a custom logger. Default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunner sets how the reaper's loop is started. bg.Sync makes Start
// block, which is what tests and the one-shot purge command want.
func WithRunner(r bg.Runner) Option {
	return func(s *settings) {
		if r != nil {
			s.runner = r
		}
	}
}
