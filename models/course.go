package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CourseStatusActive   = "active"
	CourseStatusArchived = "archived"
)

type Course struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID   string             `bson:"course_id" json:"course_id"` // COU-<year>-<slug>
	Title      string             `bson:"title" json:"title"`
	Slug       string             `bson:"slug" json:"slug"`
	BatchYear  int                `bson:"batch_year" json:"batch_year"`
	Status     string             `bson:"status" json:"status"`
	Desc       string             `bson:"desc" json:"desc"`
	Duration   string             `bson:"duration" json:"duration"`
	Highlight  string             `bson:"highlight" json:"highlight"`
	Features   []string           `bson:"features" json:"features"`
	CreatedBy  string             `bson:"created_by" json:"created_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	ArchivedAt *time.Time         `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
}

func (c *Course) IsActive() bool {
	return c.Status == CourseStatusActive
}
