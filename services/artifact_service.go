package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"coachingportal/models"
	"coachingportal/utils"
)

const (
	NotesPrefix   = "pdfs"
	ResultsPrefix = "Results"
)

// FileUpload is one PDF coming from an admin form.
type FileUpload struct {
	CourseID string
	Title    string
	Filename string
	Size     int64
	Content  io.Reader
}

type ManualResultInput struct {
	CourseID    string  `json:"course_id"`
	StudentName string  `json:"student_name"`
	Subject     string  `json:"subject"`
	Marks       float64 `json:"marks"`
}

// ArtifactService handles notes and results. Every publish triggers a course-scoped fan-out
// after the artifact document is stored.
type ArtifactService struct {
	artifacts   ArtifactStore
	courses     CourseStore
	storage     ObjectStorage
	quota       *StorageService
	publisher   Publisher
	maxFileSize int64
	now         func() time.Time
}

func NewArtifactService(artifacts ArtifactStore, courses CourseStore, storage ObjectStorage, quota *StorageService, publisher Publisher, maxFileSize int64) *ArtifactService {
	return &ArtifactService{
		artifacts:   artifacts,
		courses:     courses,
		storage:     storage,
		quota:       quota,
		publisher:   publisher,
		maxFileSize: maxFileSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ArtifactService) UploadNotes(ctx context.Context, adminID string, up FileUpload) (*models.Artifact, error) {
	artifact, err := s.storePDF(ctx, adminID, models.KindNotes, NotesPrefix, up)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, models.PublicationEvent{
		Kind:        models.KindNotes,
		CourseID:    artifact.CourseID,
		CourseTitle: artifact.CourseTitle,
		ArtifactID:  artifact.ID.Hex(),
		Title:       artifact.Title,
		PublishedAt: artifact.PublishedAt,
	})
	return artifact, nil
}

func (s *ArtifactService) PublishResultPDF(ctx context.Context, adminID string, up FileUpload) (*models.Artifact, error) {
	artifact, err := s.storePDF(ctx, adminID, models.KindResult, ResultsPrefix, up)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, models.PublicationEvent{
		Kind:        models.KindResult,
		CourseID:    artifact.CourseID,
		CourseTitle: artifact.CourseTitle,
		ArtifactID:  artifact.ID.Hex(),
		Title:       artifact.Title,
		Message:     fmt.Sprintf("New PDF result uploaded: %s", artifact.Title),
		PublishedAt: artifact.PublishedAt,
	})
	return artifact, nil
}

func (s *ArtifactService) PublishManualResult(ctx context.Context, adminID string, in ManualResultInput) (*models.Artifact, error) {
	if strings.TrimSpace(in.StudentName) == "" || strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("%w: student name and subject are required", ErrValidation)
	}
	if in.Marks < 0 {
		return nil, fmt.Errorf("%w: marks cannot be negative", ErrValidation)
	}

	course, err := s.courseFor(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	artifact := &models.Artifact{
		Kind:        models.KindResult,
		Source:      models.ArtifactSourceManual,
		Title:       fmt.Sprintf("%s - %s", in.StudentName, in.Subject),
		CourseID:    course.CourseID,
		CourseTitle: course.Title,
		Result: &models.ManualResult{
			StudentName: in.StudentName,
			Subject:     in.Subject,
			Marks:       in.Marks,
		},
		UploadedBy:  adminID,
		PublishedAt: s.now(),
	}
	if err := s.artifacts.Insert(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	s.publisher.Publish(ctx, models.PublicationEvent{
		Kind:        models.KindResult,
		CourseID:    artifact.CourseID,
		CourseTitle: artifact.CourseTitle,
		ArtifactID:  artifact.ID.Hex(),
		Title:       artifact.Title,
		Message:     fmt.Sprintf("%s - %s marks added", in.StudentName, in.Subject),
		PublishedAt: artifact.PublishedAt,
	})
	return artifact, nil
}

// Delete removes the stored object and the artifact document. Notifications already
// written for it are left alone.
func (s *ArtifactService) Delete(ctx context.Context, id string) error {
	artifact, err := s.artifacts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if artifact.ObjectName != "" {
		if err := s.storage.Delete(ctx, artifact.ObjectName); err != nil {
			return err
		}
	}

	if err := s.artifacts.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

func (s *ArtifactService) List(ctx context.Context, courseID string, kind models.NotificationKind) ([]models.Artifact, error) {
	if kind != "" && kind != models.KindNotes && kind != models.KindResult {
		return nil, fmt.Errorf("%w: artifacts are notes or results", ErrInvalidKind)
	}
	return s.artifacts.ListByCourse(ctx, courseID, kind)
}

// DownloadURL signs a short-lived link to the artifact's PDF.
func (s *ArtifactService) DownloadURL(ctx context.Context, id string) (*models.Artifact, string, error) {
	artifact, err := s.artifacts.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if artifact.ObjectName == "" {
		return nil, "", fmt.Errorf("%w: artifact has no file", ErrNotFound)
	}
	url, err := s.storage.SignedURL(ctx, artifact.ObjectName, PreviewURLDuration)
	if err != nil {
		return nil, "", err
	}
	return artifact, url, nil
}

func (s *ArtifactService) storePDF(ctx context.Context, adminID string, kind models.NotificationKind, prefix string, up FileUpload) (*models.Artifact, error) {
	if strings.TrimSpace(up.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := utils.ValidatePDF(up.Filename, up.Size, s.maxFileSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	course, err := s.courseFor(ctx, up.CourseID)
	if err != nil {
		return nil, err
	}

	if err := s.quota.CheckUpload(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	uploaded, err := s.storage.Upload(ctx, ObjectName(prefix, course.CourseID, up.Filename, now), up.Content)
	if err != nil {
		return nil, err
	}

	artifact := &models.Artifact{
		Kind:        kind,
		Source:      models.ArtifactSourcePDF,
		Title:       strings.TrimSpace(up.Title),
		CourseID:    course.CourseID,
		CourseTitle: course.Title,
		ObjectName:  uploaded.ObjectName,
		Size:        uploaded.Size,
		SHA1Hash:    uploaded.SHA1,
		UploadedBy:  adminID,
		PublishedAt: now,
	}

	if err := s.artifacts.Insert(ctx, artifact); err != nil {
		if delErr := s.storage.Delete(ctx, uploaded.ObjectName); delErr != nil {
			return nil, fmt.Errorf("failed to save artifact: %w (cleanup also failed: %v)", err, delErr)
		}
		return nil, fmt.Errorf("failed to save artifact: %w", err)
	}
	return artifact, nil
}

func (s *ArtifactService) courseFor(ctx context.Context, courseID string) (*models.Course, error) {
	if courseID == "" {
		return nil, fmt.Errorf("%w: course id is required", ErrValidation)
	}
	course, err := s.courses.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", courseID, err)
	}
	return course, nil
}
