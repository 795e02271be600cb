package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationKind string

const (
	KindCourse NotificationKind = "course"
	KindNotes  NotificationKind = "notes"
	KindResult NotificationKind = "result"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case KindCourse, KindNotes, KindResult:
		return true
	}
	return false
}

// Notification is owned by exactly one recipient. Title and message never change after insert.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID string             `bson:"recipient_id" json:"recipient_id"`
	Kind        NotificationKind   `bson:"kind" json:"kind"`
	CourseID    *string            `bson:"course_id" json:"course_id"` // nil for broadcast announcements
	CourseTitle string             `bson:"course_title,omitempty" json:"course_title,omitempty"`
	ArtifactID  string             `bson:"artifact_id,omitempty" json:"artifact_id,omitempty"`
	EventID     string             `bson:"event_id" json:"event_id"`
	DedupeKey   string             `bson:"dedupe_key" json:"-"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

func (n *Notification) IsBroadcast() bool {
	return n.CourseID == nil || *n.CourseID == ""
}

// PublicationEvent is produced by an admin publish action after the artifact is persisted.
type PublicationEvent struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	CourseID    string           `json:"course_id,omitempty"` // empty means broadcast
	CourseTitle string           `json:"course_title,omitempty"`
	ArtifactID  string           `json:"artifact_id,omitempty"`
	Title       string           `json:"title"`
	Message     string           `json:"message,omitempty"` // overrides the derived message
	PublishedAt time.Time        `json:"published_at"`
}
