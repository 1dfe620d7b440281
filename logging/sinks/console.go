// Package sinks provides ready-made event sinks for the logging router.
package sinks

import (
	"context"
	"io"

	charmlog "github.com/charmbracelet/log"

	"github.com/0xwonj/dungeon-sub001/logging"
)

// Console renders events as structured log lines on a writer, one line per
// event.
type Console struct {
	logger *charmlog.Logger
}

// NewConsole builds a console sink writing to w.
func NewConsole(w io.Writer) *Console {
	logger := charmlog.New(w)
	logger.SetReportTimestamp(true)
	return &Console{logger: logger}
}

// Name implements logging.Sink.
func (c *Console) Name() string { return "console" }

// Deliver implements logging.Sink.
func (c *Console) Deliver(_ context.Context, event logging.Event) error {
	fields := []any{
		"tick", event.Tick,
		"actor", event.Actor.ID,
	}
	if event.Nonce != 0 {
		fields = append(fields, "nonce", event.Nonce)
	}
	for _, target := range event.Targets {
		fields = append(fields, "target", target.ID)
	}
	if event.Payload != nil {
		fields = append(fields, "payload", event.Payload)
	}
	switch event.Severity {
	case logging.SeverityDebug:
		c.logger.Debug(string(event.Type), fields...)
	case logging.SeverityWarn:
		c.logger.Warn(string(event.Type), fields...)
	case logging.SeverityError:
		c.logger.Error(string(event.Type), fields...)
	default:
		c.logger.Info(string(event.Type), fields...)
	}
	return nil
}

// Close implements logging.Sink.
func (c *Console) Close(context.Context) error { return nil }
