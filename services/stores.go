package services

import (
	"context"
	"errors"
	"io"
	"time"

	"coachingportal/models"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("already exists")
	ErrCourseArchived       = errors.New("course is archived")
	ErrInvalidKind          = errors.New("invalid notification kind")
	ErrCourseRequired       = errors.New("course id is required for course-scoped notifications")
	ErrPartialFanOut        = errors.New("fan-out partially delivered")
	ErrStorageLimitExceeded = errors.New("storage limit exceeded")
	ErrAdminExists          = errors.New("admin already exists")
)

// UserStore reads and mutates user documents. Role is trusted as stored.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, uid string) (*models.User, error)
	ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (emailTaken, mobileTaken bool, err error)
	AddEnrollment(ctx context.Context, uid, courseID string) error
	RemoveEnrollment(ctx context.Context, uid, courseID string) error
	AdminExists(ctx context.Context) (bool, error)
	ListStudents(ctx context.Context) ([]models.User, error)
	// StudentIDsEnrolledIn is the compound role + array-membership query.
	StudentIDsEnrolledIn(ctx context.Context, courseID string) ([]string, error)
	// Watch signals whenever the user's document changes.
	Watch(ctx context.Context, uid string) (<-chan struct{}, error)
}

type CourseStore interface {
	Insert(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetByCourseID(ctx context.Context, courseID string) (*models.Course, error)
	Update(ctx context.Context, id string, fields CourseUpdate) error
	Archive(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, status string) ([]models.Course, error)
}

type ArtifactStore interface {
	Insert(ctx context.Context, artifact *models.Artifact) error
	GetByID(ctx context.Context, id string) (*models.Artifact, error)
	Delete(ctx context.Context, id string) error
	ListByCourse(ctx context.Context, courseID string, kind models.NotificationKind) ([]models.Artifact, error)
}

// NotificationStore persists notification documents.
type NotificationStore interface {
	// InsertBatch commits all records atomically and stamps CreatedAt at commit time.
	// It returns how many records are stored; on error that is zero unless a partial
	// write could not be undone.
	InsertBatch(ctx context.Context, batch []models.Notification) (int, error)
	FindByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	FindOwned(ctx context.Context, id, recipientID string) (*models.Notification, error)
	// DeleteOwned reports whether a record was removed; a missing record is not an error.
	DeleteOwned(ctx context.Context, id, recipientID string) (bool, error)
	DeleteManyOwned(ctx context.Context, ids []string, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	RecipientsWithDedupeKey(ctx context.Context, key string, recipients []string) ([]string, error)
	Watch(ctx context.Context, recipientID string) (<-chan struct{}, error)
}

type PhotoStore interface {
	Insert(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Photo, error)
}

// ObjectStorage is the external media store.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName string, r io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, objectName string) error
	SignedURL(ctx context.Context, objectName string, duration time.Duration) (string, error)
	PrefixSize(ctx context.Context, prefix string) (int64, error)
}

type CourseUpdate struct {
	Title     string
	Slug      string
	Desc      string
	Duration  string
	Highlight string
	UpdatedAt time.Time
}
