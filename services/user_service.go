package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coachingportal/models"
	"coachingportal/utils"
)

type StudentRegistration struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	CourseID string `json:"course"`
}

// AdminRegistration is the profile of the single portal admin.
type AdminRegistration struct {
	UID    string `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// UserService owns student profiles and self-enrollment. Role is fixed at registration.
type UserService struct {
	users   UserStore
	courses CourseStore
	now     func() time.Time
}

func NewUserService(users UserStore, courses CourseStore) *UserService {
	return &UserService{
		users:   users,
		courses: courses,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) RegisterStudent(ctx context.Context, reg StudentRegistration) (*models.User, error) {
	if strings.TrimSpace(reg.UID) == "" || strings.TrimSpace(reg.Name) == "" {
		return nil, fmt.Errorf("%w: uid and name are required", ErrValidation)
	}
	if err := utils.ValidateEmail(strings.TrimSpace(reg.Email)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	email := strings.ToLower(strings.TrimSpace(reg.Email))

	emailTaken, mobileTaken, err := s.users.ExistsByEmailOrMobile(ctx, email, reg.Mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if emailTaken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if mobileTaken {
		return nil, fmt.Errorf("%w: mobile already registered", ErrConflict)
	}

	enrolled := []string{}
	if reg.CourseID != "" {
		if _, err := s.enrollableCourse(ctx, reg.CourseID); err != nil {
			return nil, err
		}
		enrolled = append(enrolled, reg.CourseID)
	}

	now := s.now()
	user := &models.User{
		ID:              reg.UID,
		Name:            strings.TrimSpace(reg.Name),
		Email:           email,
		Mobile:          reg.Mobile,
		Role:            models.RoleStudent,
		EnrolledCourses: enrolled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register student: %w", err)
	}
	return user, nil
}

// RegisterAdmin creates the admin profile. Signup closes once any admin exists.
func (s *UserService) RegisterAdmin(ctx context.Context, reg AdminRegistration) (*models.User, error) {
	if strings.TrimSpace(reg.UID) == "" || strings.TrimSpace(reg.Email) == "" || strings.TrimSpace(reg.Mobile) == "" {
		return nil, fmt.Errorf("%w: uid, email and mobile are required", ErrValidation)
	}
	if err := utils.ValidateEmail(strings.TrimSpace(reg.Email)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	exists, err := s.users.AdminExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for admin: %w", err)
	}
	if exists {
		return nil, ErrAdminExists
	}

	now := s.now()
	user := &models.User{
		ID:              reg.UID,
		Name:            strings.TrimSpace(reg.Name),
		Email:           strings.ToLower(strings.TrimSpace(reg.Email)),
		Mobile:          strings.TrimSpace(reg.Mobile),
		Role:            models.RoleAdmin,
		EnrolledCourses: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// a concurrent signup loses on the single_admin index and surfaces as ErrConflict
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register admin: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetByID(ctx, uid)
}

// Enroll adds courseID to the caller's enrollment. Enrolling twice is harmless.
func (s *UserService) Enroll(ctx context.Context, uid, courseID string) (*models.User, error) {
	if _, err := s.enrollableCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.users.AddEnrollment(ctx, uid, courseID); err != nil {
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}
	return s.users.GetByID(ctx, uid)
}

func (s *UserService) Unenroll(ctx context.Context, uid, courseID string) (*models.User, error) {
	if err := s.users.RemoveEnrollment(ctx, uid, courseID); err != nil {
		return nil, fmt.Errorf("failed to unenroll: %w", err)
	}
	return s.users.GetByID(ctx, uid)
}

func (s *UserService) enrollableCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courses.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", courseID, err)
	}
	if !course.IsActive() {
		return nil, fmt.Errorf("%w: %s", ErrCourseArchived, courseID)
	}
	return course, nil
}
