package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ArtifactSourcePDF    = "pdf"
	ArtifactSourceManual = "manual"
)

// Artifact is a notes PDF or a result tied to a course.
type Artifact struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind        NotificationKind   `bson:"kind" json:"kind"` // notes or result
	Source      string             `bson:"source" json:"source"`
	Title       string             `bson:"title" json:"title"`
	CourseID    string             `bson:"course_id" json:"course_id"`
	CourseTitle string             `bson:"course_title" json:"course_title"`
	ObjectName  string             `bson:"object_name,omitempty" json:"object_name,omitempty"`
	Size        int64              `bson:"size,omitempty" json:"size,omitempty"`
	SHA1Hash    string             `bson:"sha1_hash,omitempty" json:"sha1_hash,omitempty"`
	Result      *ManualResult      `bson:"result,omitempty" json:"result,omitempty"`
	UploadedBy  string             `bson:"uploaded_by" json:"uploaded_by"`
	PublishedAt time.Time          `bson:"published_at" json:"published_at"`
}

type ManualResult struct {
	StudentName string  `bson:"student_name" json:"student_name"`
	Subject     string  `bson:"subject" json:"subject"`
	Marks       float64 `bson:"marks" json:"marks"`
}
