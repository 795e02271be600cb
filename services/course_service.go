package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"coachingportal/models"
)

type CourseInput struct {
	Title     string   `json:"title"`
	Desc      string   `json:"desc"`
	Duration  string   `json:"duration"`
	Highlight string   `json:"highlight"`
	Features  []string `json:"features"`
}

func (in CourseInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Desc) == "" || strings.TrimSpace(in.Duration) == "" {
		return fmt.Errorf("%w: title, desc and duration are required", ErrValidation)
	}
	return nil
}

type CourseService struct {
	courses   CourseStore
	publisher Publisher
	now       func() time.Time
}

func NewCourseService(courses CourseStore, publisher Publisher) *CourseService {
	return &CourseService{
		courses:   courses,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and collapses runs of non-alphanumerics into single dashes.
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// CourseIDFor builds the readable course id, unique per title and year.
func CourseIDFor(title string, year int) string {
	return fmt.Sprintf("COU-%d-%s", year, Slugify(title))
}

// Create persists the course and then announces it to every student.
func (s *CourseService) Create(ctx context.Context, adminID string, in CourseInput) (*models.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	slug := Slugify(in.Title)
	if slug == "" {
		return nil, fmt.Errorf("%w: title must contain letters or digits", ErrValidation)
	}
	courseID := CourseIDFor(in.Title, now.Year())

	existing, err := s.courses.GetByCourseID(ctx, courseID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing course: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: course with same title already exists for %d", ErrConflict, now.Year())
	}

	course := &models.Course{
		CourseID:  courseID,
		Title:     strings.TrimSpace(in.Title),
		Slug:      slug,
		BatchYear: now.Year(),
		Status:    models.CourseStatusActive,
		Desc:      in.Desc,
		Duration:  in.Duration,
		Highlight: in.Highlight,
		Features:  cleanFeatures(in.Features),
		CreatedBy: adminID,
		CreatedAt: now,
	}

	if err := s.courses.Insert(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.publisher.Publish(ctx, models.PublicationEvent{
		Kind:        models.KindCourse,
		CourseTitle: course.Title,
		ArtifactID:  course.ID.Hex(),
		Title:       course.Title,
		PublishedAt: now,
	})

	return course, nil
}

// Update edits course details; it does not notify anyone.
func (s *CourseService) Update(ctx context.Context, id string, in CourseInput) (*models.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.courses.GetByID(ctx, id); err != nil {
		return nil, err
	}

	err := s.courses.Update(ctx, id, CourseUpdate{
		Title:     strings.TrimSpace(in.Title),
		Slug:      Slugify(in.Title),
		Desc:      in.Desc,
		Duration:  in.Duration,
		Highlight: in.Highlight,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return s.courses.GetByID(ctx, id)
}

// Archive stops new enrollments. Notifications that reference the course stay valid.
func (s *CourseService) Archive(ctx context.Context, id string) error {
	if _, err := s.courses.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.courses.Archive(ctx, id, s.now()); err != nil {
		return fmt.Errorf("failed to archive course: %w", err)
	}
	return nil
}

func (s *CourseService) List(ctx context.Context, status string) ([]models.Course, error) {
	switch status {
	case "", models.CourseStatusActive, models.CourseStatusArchived:
	default:
		return nil, fmt.Errorf("%w: unknown course status %q", ErrValidation, status)
	}
	return s.courses.List(ctx, status)
}

func (s *CourseService) GetByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	return s.courses.GetByCourseID(ctx, courseID)
}

func cleanFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if t := strings.TrimSpace(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}
