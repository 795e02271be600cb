package services

import (
	"context"
	"fmt"

	"coachingportal/models"
)

const (
	AudienceModeCompound = "compound"
	AudienceModeScan     = "scan"
)

// AudienceService resolves the recipients of a publication event.
type AudienceService struct {
	users UserStore
	mode  string
}

func NewAudienceService(users UserStore, mode string) *AudienceService {
	if mode != AudienceModeScan {
		mode = AudienceModeCompound
	}
	return &AudienceService{users: users, mode: mode}
}

// Resolve returns the set of student uids for kind/courseID in no particular order.
// An empty courseID is only allowed for course announcements, which go to every student.
func (s *AudienceService) Resolve(ctx context.Context, kind models.NotificationKind, courseID string) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	if courseID == "" {
		if kind != models.KindCourse {
			return nil, ErrCourseRequired
		}
		students, err := s.users.ListStudents(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list students: %w", err)
		}
		return uniqueStudentIDs(students, ""), nil
	}

	if s.mode == AudienceModeScan {
		students, err := s.users.ListStudents(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list students: %w", err)
		}
		return uniqueStudentIDs(students, courseID), nil
	}

	ids, err := s.users.StudentIDsEnrolledIn(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query students enrolled in %s: %w", courseID, err)
	}
	return dedupeIDs(ids), nil
}

// uniqueStudentIDs keeps students (and, if courseID is set, only those enrolled in it).
// Role is re-checked so a scan over a loosely filtered store stays correct.
func uniqueStudentIDs(users []models.User, courseID string) []string {
	seen := make(map[string]struct{}, len(users))
	ids := make([]string, 0, len(users))
	for i := range users {
		u := &users[i]
		if !u.IsStudent() {
			continue
		}
		if courseID != "" && !u.IsEnrolled(courseID) {
			continue
		}
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		ids = append(ids, u.ID)
	}
	return ids
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
