// Package events publishes assessment lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/pkg/logger"
	"github.com/okian/climarisk/pkg/metrics"
)

// Publisher announces finished assessments.
type Publisher interface {
	PublishCompleted(ctx context.Context, report model.Report) error
	PublishFailed(ctx context.Context, job model.AssessmentJob, cause error) error
	Close()
}

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes JSON events on core NATS subjects.
type NATSPublisher struct {
	conn   conn
	prefix string
	now    func() time.Time
	logger logger.Logger
}

// NewNATSPublisher connects to url and publishes under prefix.
func NewNATSPublisher(url, prefix string, log logger.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("climarisk"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return newNATSPublisher(nc, prefix, log), nil
}

func newNATSPublisher(c conn, prefix string, log logger.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: c, prefix: prefix, now: time.Now, logger: log}
}

// PublishCompleted sends an AssessmentCompletedEvent for report.
func (p *NATSPublisher) PublishCompleted(ctx context.Context, report model.Report) error {
	return p.publish(ctx, SubjectAssessmentCompleted(p.prefix, report.ID), NewCompletedEvent(report))
}

// PublishFailed sends an AssessmentFailedEvent stamped with the current time.
func (p *NATSPublisher) PublishFailed(ctx context.Context, job model.AssessmentJob, cause error) error {
	ev := AssessmentFailedEvent{
		AssessmentID: job.ID,
		Company:      job.Company,
		FailedAt:     p.now(),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	return p.publish(ctx, SubjectAssessmentFailed(p.prefix, job.ID), ev)
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		metrics.RecordEventPublished("error")
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		metrics.RecordEventPublished("error")
		p.logger.Warn(ctx, "event publish failed", logger.String("subject", subject), logger.Error(err))
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	metrics.RecordEventPublished("ok")
	return nil
}

// Close drops the NATS connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

// PublishCompleted does nothing.
func (NopPublisher) PublishCompleted(context.Context, model.Report) error { return nil }

// PublishFailed does nothing.
func (NopPublisher) PublishFailed(context.Context, model.AssessmentJob, error) error { return nil }

// Close does nothing.
func (NopPublisher) Close() {}
