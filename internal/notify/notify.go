// Package notify publishes build-completed events over NATS so downstream
// systems (deploy hooks, chat bots) can react to new site builds.
package notify

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/docsmith/docsmith/internal/config"
	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/logfields"
	"github.com/docsmith/docsmith/internal/site"
)

// BuildEvent is the wire payload published after each build.
type BuildEvent struct {
	BuildID       string            `json:"build_id"`
	Outcome       site.BuildOutcome `json:"outcome"`
	PagesRendered int               `json:"pages_rendered"`
	PagesSkipped  int               `json:"pages_skipped"`
	Errors        int               `json:"errors"`
	Warnings      int               `json:"warnings"`
	DurationMS    int64             `json:"duration_ms"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// Notifier publishes build events to a NATS subject.
type Notifier struct {
	conn    *nats.Conn
	subject string
}

// New connects to the configured NATS server.
func New(cfg config.NotifyConfig) (*Notifier, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("docsmith"),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "connect to NATS").
			WithContext("url", cfg.URL).
			Build()
	}
	slog.Info("Build notifier connected", slog.String("subject", cfg.Subject))
	return &Notifier{conn: conn, subject: cfg.Subject}, nil
}

// Publish sends the event for a finalized build report.
func (n *Notifier) Publish(report *site.Report) error {
	event := BuildEvent{
		BuildID:       report.BuildID,
		Outcome:       report.Outcome,
		PagesRendered: report.PagesRendered,
		PagesSkipped:  report.PagesSkipped,
		Errors:        len(report.Errors()),
		Warnings:      len(report.Warnings()),
		DurationMS:    report.Duration().Milliseconds(),
		FinishedAt:    report.End,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal build event").Build()
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "publish build event").
			WithContext("subject", n.subject).
			Build()
	}
	slog.Debug("Build event published",
		logfields.BuildID(report.BuildID),
		logfields.Outcome(string(report.Outcome)))
	return nil
}

// Close drains the connection, flushing pending publishes.
func (n *Notifier) Close() {
	if n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
	}
}
