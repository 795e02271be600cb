package services

import (
	"context"
	"errors"
	"log"
	"time"

	"coachingportal/metrics"
	"coachingportal/models"

	"github.com/google/uuid"
)

// Publisher is called by publish flows once their artifact write has committed.
type Publisher interface {
	Publish(ctx context.Context, event models.PublicationEvent) *WriteReport
}

// PublishService chains audience resolution and fan-out. Failures are logged and
// reported, never returned to the publishing flow.
type PublishService struct {
	audience *AudienceService
	writer   *FanOutService
	logger   *log.Logger
}

func NewPublishService(audience *AudienceService, writer *FanOutService, logger *log.Logger) *PublishService {
	if logger == nil {
		logger = log.New(log.Writer(), "[PUBLISH] ", log.LstdFlags)
	}
	return &PublishService{audience: audience, writer: writer, logger: logger}
}

func (p *PublishService) Publish(ctx context.Context, event models.PublicationEvent) *WriteReport {
	// The publish already committed; a client hanging up must not cut the fan-out short.
	ctx = context.WithoutCancel(ctx)

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now().UTC()
	}

	recipients, err := p.audience.Resolve(ctx, event.Kind, event.CourseID)
	if err != nil {
		p.logger.Printf("Audience resolution failed for event %s (kind=%s course=%q), no notifications written: %v",
			event.ID, event.Kind, event.CourseID, err)
		return &WriteReport{
			EventID:         event.ID,
			Kind:            event.Kind,
			CourseID:        event.CourseID,
			ResolutionError: err.Error(),
		}
	}

	metrics.AudienceSize.WithLabelValues(string(event.Kind)).Observe(float64(len(recipients)))
	if len(recipients) == 0 {
		p.logger.Printf("Event %s (kind=%s course=%q) resolved to an empty audience", event.ID, event.Kind, event.CourseID)
	}

	report, err := p.writer.FanOut(ctx, event, recipients)
	if err != nil && !errors.Is(err, ErrPartialFanOut) {
		p.logger.Printf("Fan-out for event %s failed: %v", event.ID, err)
	}

	p.logger.Printf("Fan-out event=%s kind=%s course=%q attempted=%d committed=%d skipped=%d failed_chunks=%d",
		report.EventID, report.Kind, report.CourseID, report.Attempted, report.Committed, report.Skipped, len(report.FailedChunks))
	return report
}
