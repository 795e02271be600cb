package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"coachingportal/metrics"
	"coachingportal/models"

	"github.com/google/uuid"
)

// DefaultBatchSize matches the document store's write batch limit.
const DefaultBatchSize = 500

// ChunkFailure records a chunk that did not fully commit. Committed is non-zero only when
// the store could not undo a partial write.
type ChunkFailure struct {
	Index     int    `json:"index"`
	Size      int    `json:"size"`
	Committed int    `json:"committed,omitempty"`
	Error     string `json:"error"`
}

// WriteReport describes the outcome of a single fan-out.
type WriteReport struct {
	EventID         string                  `json:"event_id"`
	Kind            models.NotificationKind `json:"kind"`
	CourseID        string                  `json:"course_id,omitempty"`
	Attempted       int                     `json:"attempted"`
	Committed       int                     `json:"committed"`
	Skipped         int                     `json:"skipped"`
	FailedChunks    []ChunkFailure          `json:"failed_chunks,omitempty"`
	ResolutionError string                  `json:"resolution_error,omitempty"`
}

func (r *WriteReport) Failed() bool {
	return r.ResolutionError != "" || len(r.FailedChunks) > 0
}

// FanOutService writes one notification per recipient, in sequential atomic chunks.
// It never updates or deletes existing notifications.
type FanOutService struct {
	store     NotificationStore
	batchSize int
	dedupe    bool
	logger    *log.Logger
}

func NewFanOutService(store NotificationStore, batchSize int, dedupe bool, logger *log.Logger) *FanOutService {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[FANOUT] ", log.LstdFlags)
	}
	return &FanOutService{
		store:     store,
		batchSize: batchSize,
		dedupe:    dedupe,
		logger:    logger,
	}
}

// FanOut commits chunks in order and stops at the first failed chunk. Chunks committed
// before the failure stay delivered; the failed chunk and every later one are reported.
func (s *FanOutService) FanOut(ctx context.Context, event models.PublicationEvent, audience []string) (*WriteReport, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	report := &WriteReport{
		EventID:  event.ID,
		Kind:     event.Kind,
		CourseID: event.CourseID,
	}

	recipients := dedupeIDs(audience)
	if len(recipients) == 0 {
		return report, nil
	}

	key := DedupeKey(event)

	if s.dedupe {
		existing, err := s.store.RecipientsWithDedupeKey(ctx, key, recipients)
		if err != nil {
			s.logger.Printf("Dedupe lookup failed for event %s, writing without it: %v", event.ID, err)
		} else if len(existing) > 0 {
			recipients = subtract(recipients, existing)
			report.Skipped = len(existing)
		}
	}

	report.Attempted = len(recipients)
	records := buildNotifications(event, key, recipients)

	chunks := splitChunks(records, s.batchSize)
	for i, chunk := range chunks {
		var stored int
		err := ctx.Err()
		if err == nil {
			stored, err = s.store.InsertBatch(ctx, chunk)
		}
		if err != nil {
			s.logger.Printf("Chunk %d/%d of event %s failed (%d records, %d stored): %v", i+1, len(chunks), event.ID, len(chunk), stored, err)
			report.Committed += stored
			report.FailedChunks = append(report.FailedChunks, ChunkFailure{Index: i, Size: len(chunk), Committed: stored, Error: err.Error()})
			for j := i + 1; j < len(chunks); j++ {
				report.FailedChunks = append(report.FailedChunks, ChunkFailure{
					Index: j,
					Size:  len(chunks[j]),
					Error: "not attempted after earlier chunk failure",
				})
			}
			break
		}
		report.Committed += len(chunk)
		metrics.FanOutChunks.WithLabelValues("committed").Inc()
	}

	metrics.FanOutNotifications.WithLabelValues(string(event.Kind), "committed").Add(float64(report.Committed))
	if lost := report.Attempted - report.Committed; lost > 0 {
		metrics.FanOutNotifications.WithLabelValues(string(event.Kind), "failed").Add(float64(lost))
		metrics.FanOutChunks.WithLabelValues("failed").Add(float64(len(report.FailedChunks)))
		return report, fmt.Errorf("%w: committed %d of %d", ErrPartialFanOut, report.Committed, report.Attempted)
	}

	return report, nil
}

// DedupeKey is deterministic per (kind, course, artifact). Events without an artifact id
// fall back to the title.
func DedupeKey(event models.PublicationEvent) string {
	ref := event.ArtifactID
	if ref == "" {
		ref = "title:" + event.Title
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{string(event.Kind), event.CourseID, ref}, "|")))
	return hex.EncodeToString(sum[:])
}

// NotificationText derives the display title and message for an event.
func NotificationText(event models.PublicationEvent) (string, string) {
	var title, message string
	switch event.Kind {
	case models.KindCourse:
		title = "New Course Available"
		message = fmt.Sprintf("%s (%d) course is now live", event.Title, event.PublishedAt.Year())
	case models.KindNotes:
		title = "New Notes Uploaded"
		message = fmt.Sprintf("%s notes are now available", event.Title)
	case models.KindResult:
		title = "Result Published"
		message = fmt.Sprintf("%s result is now available", event.Title)
	}
	if event.Message != "" {
		message = event.Message
	}
	return title, message
}

func buildNotifications(event models.PublicationEvent, key string, recipients []string) []models.Notification {
	title, message := NotificationText(event)

	var courseID *string
	if event.CourseID != "" {
		id := event.CourseID
		courseID = &id
	}

	records := make([]models.Notification, 0, len(recipients))
	for _, uid := range recipients {
		records = append(records, models.Notification{
			RecipientID: uid,
			Kind:        event.Kind,
			CourseID:    courseID,
			CourseTitle: event.CourseTitle,
			ArtifactID:  event.ArtifactID,
			EventID:     event.ID,
			DedupeKey:   key,
			Title:       title,
			Message:     message,
			Read:        false,
		})
	}
	return records
}

func splitChunks(records []models.Notification, size int) [][]models.Notification {
	var chunks [][]models.Notification
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

func subtract(ids, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, id := range remove {
		drop[id] = struct{}{}
	}
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
