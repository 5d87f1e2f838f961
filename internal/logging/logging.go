// Package logging reports git process lifecycles through log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satococoa/gitwrap/internal/errors"
	"github.com/satococoa/gitwrap/internal/event"
)

// Priority of the log handlers. Handlers that rewrite or bypass a command
// should use a lower value so the log reflects their changes.
const Priority = 100

// New returns a logger writing text or JSON records at level to w.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel accepts debug, info, warn and error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Subscriber logs every lifecycle event of every run on a bus.
type Subscriber struct {
	logger  *slog.Logger
	started sync.Map // uuid.UUID -> time.Time
}

// NewSubscriber creates a Subscriber writing to logger.
func NewSubscriber(logger *slog.Logger) *Subscriber {
	return &Subscriber{logger: logger}
}

func (s *Subscriber) Subscriptions() []event.Subscription {
	return []event.Subscription{
		{Kind: event.Prepare, Handler: s.prepare, Priority: Priority},
		{Kind: event.Output, Handler: s.output, Priority: Priority},
		{Kind: event.Success, Handler: s.success, Priority: Priority},
		{Kind: event.Error, Handler: s.failure, Priority: Priority},
		{Kind: event.Bypass, Handler: s.bypass, Priority: Priority},
	}
}

func (s *Subscriber) prepare(e *event.Event) error {
	s.started.Store(e.RunID, time.Now())
	s.logger.Debug("git prepare",
		"run_id", e.RunID,
		"command", commandLine(e),
		"dir", workDir(e),
	)
	return nil
}

func (s *Subscriber) output(e *event.Event) error {
	text := strings.TrimRight(string(e.Chunk), "\r\n")
	if text == "" {
		return nil
	}
	for _, line := range strings.Split(text, "\n") {
		s.logger.Debug("git output",
			"run_id", e.RunID,
			"stream", e.Stream.String(),
			"line", strings.TrimRight(line, "\r"),
		)
	}
	return nil
}

func (s *Subscriber) success(e *event.Event) error {
	s.logger.Info("git succeeded",
		"run_id", e.RunID,
		"command", commandLine(e),
		"duration", s.elapsed(e.RunID),
	)
	return nil
}

func (s *Subscriber) failure(e *event.Event) error {
	s.logger.Error("git failed",
		"run_id", e.RunID,
		"command", commandLine(e),
		"exit_code", errors.ExitCode(e.Err),
		"duration", s.elapsed(e.RunID),
		"error", e.Err,
	)
	return nil
}

func (s *Subscriber) bypass(e *event.Event) error {
	s.started.Delete(e.RunID)
	s.logger.Info("git bypassed",
		"run_id", e.RunID,
		"command", commandLine(e),
	)
	return nil
}

func (s *Subscriber) elapsed(id uuid.UUID) time.Duration {
	v, ok := s.started.LoadAndDelete(id)
	if !ok {
		return 0
	}
	return time.Since(v.(time.Time))
}

func commandLine(e *event.Event) string {
	if e.Command == nil {
		return ""
	}
	return e.Command.String()
}

func workDir(e *event.Event) string {
	if e.Process != nil && e.Process.Dir != "" {
		return e.Process.Dir
	}
	if e.Command != nil {
		return e.Command.WorkDir
	}
	return ""
}
