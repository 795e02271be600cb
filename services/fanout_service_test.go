package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"coachingportal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipients(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("s%04d", i)
	}
	return ids
}

func notesEvent() models.PublicationEvent {
	return models.PublicationEvent{
		ID:          "evt-1",
		Kind:        models.KindNotes,
		CourseID:    "COU-2024-neet",
		CourseTitle: "NEET",
		ArtifactID:  "art-1",
		Title:       "Organic Chemistry",
		PublishedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestFanOut_OneRecordPerRecipient(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewFanOutService(store, 500, false, discardLogger())

	report, err := svc.FanOut(context.Background(), notesEvent(), []string{"s1", "s2", "s1", "s3"})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Committed)
	assert.Empty(t, report.FailedChunks)
	assert.False(t, report.Failed())
	assert.Equal(t, 3, store.count())

	for _, uid := range []string{"s1", "s2", "s3"} {
		got := store.forRecipient(uid)
		require.Len(t, got, 1)
		n := got[0]
		assert.Equal(t, models.KindNotes, n.Kind)
		require.NotNil(t, n.CourseID)
		assert.Equal(t, "COU-2024-neet", *n.CourseID)
		assert.Equal(t, "New Notes Uploaded", n.Title)
		assert.Equal(t, "Organic Chemistry notes are now available", n.Message)
		assert.Equal(t, "evt-1", n.EventID)
		assert.False(t, n.Read)
		assert.False(t, n.CreatedAt.IsZero())
	}
}

func TestFanOut_BroadcastHasNilCourse(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewFanOutService(store, 500, false, discardLogger())

	event := models.PublicationEvent{
		Kind:        models.KindCourse,
		Title:       "NEET Crash Course",
		PublishedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	report, err := svc.FanOut(context.Background(), event, []string{"s1"})
	require.NoError(t, err)
	assert.NotEmpty(t, report.EventID)

	got := store.forRecipient("s1")
	require.Len(t, got, 1)
	assert.Nil(t, got[0].CourseID)
	assert.True(t, got[0].IsBroadcast())
	assert.Equal(t, "New Course Available", got[0].Title)
	assert.Equal(t, "NEET Crash Course (2024) course is now live", got[0].Message)
}

func TestFanOut_EmptyAudienceWritesNothing(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewFanOutService(store, 500, false, discardLogger())

	report, err := svc.FanOut(context.Background(), notesEvent(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Attempted)
	assert.Equal(t, 0, store.calls)
}

func TestFanOut_ChunksAtBatchSize(t *testing.T) {
	tests := []struct {
		audience   int
		wantChunks int
	}{
		{audience: 1, wantChunks: 1},
		{audience: 500, wantChunks: 1},
		{audience: 501, wantChunks: 2},
		{audience: 1200, wantChunks: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d recipients", tt.audience), func(t *testing.T) {
			store := newFakeNotificationStore()
			svc := NewFanOutService(store, DefaultBatchSize, false, discardLogger())

			report, err := svc.FanOut(context.Background(), notesEvent(), recipients(tt.audience))
			require.NoError(t, err)
			assert.Equal(t, tt.wantChunks, store.calls)
			assert.Equal(t, tt.audience, report.Committed)
			assert.Equal(t, tt.audience, store.count())
		})
	}
}

func TestFanOut_PartialFailureStopsAtFailedChunk(t *testing.T) {
	store := newFakeNotificationStore()
	store.failOn = 2
	svc := NewFanOutService(store, 500, false, discardLogger())

	report, err := svc.FanOut(context.Background(), notesEvent(), recipients(1200))
	require.ErrorIs(t, err, ErrPartialFanOut)

	assert.Equal(t, 1200, report.Attempted)
	assert.Equal(t, 500, report.Committed)
	assert.Equal(t, 500, store.count())
	assert.True(t, report.Failed())

	require.Len(t, report.FailedChunks, 2)
	assert.Equal(t, ChunkFailure{Index: 1, Size: 500, Error: "write batch aborted"}, report.FailedChunks[0])
	assert.Equal(t, 2, report.FailedChunks[1].Index)
	assert.Equal(t, 200, report.FailedChunks[1].Size)
	assert.Equal(t, 2, store.calls, "chunks after a failure are not attempted")
}

func TestFanOut_FirstChunkFailureWritesNothing(t *testing.T) {
	store := newFakeNotificationStore()
	store.failOn = 1
	svc := NewFanOutService(store, 500, false, discardLogger())

	report, err := svc.FanOut(context.Background(), notesEvent(), recipients(10))
	require.ErrorIs(t, err, ErrPartialFanOut)
	assert.Equal(t, 0, report.Committed)
	assert.Equal(t, 0, store.count())
}

func TestFanOut_CountsRecordsLeftByFailedChunk(t *testing.T) {
	store := newFakeNotificationStore()
	store.failOn = 2
	store.leftBehind = 120
	svc := NewFanOutService(store, 500, false, discardLogger())

	report, err := svc.FanOut(context.Background(), notesEvent(), recipients(1200))
	require.ErrorIs(t, err, ErrPartialFanOut)

	assert.Equal(t, 620, report.Committed)
	assert.Equal(t, store.count(), report.Committed, "report matches what is stored")
	require.Len(t, report.FailedChunks, 2)
	assert.Equal(t, 120, report.FailedChunks[0].Committed)
	assert.Equal(t, 0, report.FailedChunks[1].Committed)
	assert.Contains(t, err.Error(), "committed 620 of 1200")
}

func TestFanOut_DedupeSkipsRecipientsAlreadyNotified(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewFanOutService(store, 500, true, discardLogger())

	_, err := svc.FanOut(context.Background(), notesEvent(), []string{"s1", "s2"})
	require.NoError(t, err)

	retry := notesEvent()
	retry.ID = "evt-2"
	report, err := svc.FanOut(context.Background(), retry, []string{"s1", "s2", "s3"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Committed)
	assert.Len(t, store.forRecipient("s1"), 1)
	assert.Len(t, store.forRecipient("s3"), 1)
}

func TestFanOut_WithoutDedupeRepeatsAreWritten(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewFanOutService(store, 500, false, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := svc.FanOut(context.Background(), notesEvent(), []string{"s1"})
		require.NoError(t, err)
	}
	assert.Len(t, store.forRecipient("s1"), 2)
}

func TestDedupeKey(t *testing.T) {
	a := notesEvent()
	b := notesEvent()
	b.ID = "other-event"
	assert.Equal(t, DedupeKey(a), DedupeKey(b), "event id does not affect the key")

	c := notesEvent()
	c.ArtifactID = "art-2"
	assert.NotEqual(t, DedupeKey(a), DedupeKey(c))

	d := notesEvent()
	d.ArtifactID = ""
	e := notesEvent()
	e.ArtifactID = ""
	e.Title = "Physics"
	assert.NotEqual(t, DedupeKey(d), DedupeKey(e), "title is used when there is no artifact")
}

func TestNotificationText(t *testing.T) {
	published := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		event       models.PublicationEvent
		wantTitle   string
		wantMessage string
	}{
		{
			name:        "course",
			event:       models.PublicationEvent{Kind: models.KindCourse, Title: "JEE Mains", PublishedAt: published},
			wantTitle:   "New Course Available",
			wantMessage: "JEE Mains (2025) course is now live",
		},
		{
			name:        "notes",
			event:       models.PublicationEvent{Kind: models.KindNotes, Title: "Optics"},
			wantTitle:   "New Notes Uploaded",
			wantMessage: "Optics notes are now available",
		},
		{
			name:        "result with message override",
			event:       models.PublicationEvent{Kind: models.KindResult, Title: "Mock 3", Message: "New PDF result uploaded: Mock 3"},
			wantTitle:   "Result Published",
			wantMessage: "New PDF result uploaded: Mock 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, message := NotificationText(tt.event)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestSplitChunks(t *testing.T) {
	records := make([]models.Notification, 7)
	chunks := splitChunks(records, 3)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[2], 1)
	assert.Nil(t, splitChunks(nil, 3))
}
