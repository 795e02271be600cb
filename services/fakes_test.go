package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"coachingportal/models"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	listErr error
	watch   chan struct{}
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		s.users[u.ID] = &u
	}
	return s
}

func student(id string, courses ...string) models.User {
	return models.User{ID: id, Role: models.RoleStudent, EnrolledCourses: courses}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return ErrConflict
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, uid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", uid, ErrNotFound)
	}
	cp := *u
	cp.EnrolledCourses = append([]string(nil), u.EnrolledCourses...)
	return &cp, nil
}

func (s *fakeUserStore) ExistsByEmailOrMobile(_ context.Context, email, mobile string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var emailTaken, mobileTaken bool
	for _, u := range s.users {
		if u.Email == email {
			emailTaken = true
		}
		if mobile != "" && u.Mobile == mobile {
			mobileTaken = true
		}
	}
	return emailTaken, mobileTaken, nil
}

func (s *fakeUserStore) AddEnrollment(_ context.Context, uid, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return ErrNotFound
	}
	if !u.IsEnrolled(courseID) {
		u.EnrolledCourses = append(u.EnrolledCourses, courseID)
	}
	s.signal()
	return nil
}

func (s *fakeUserStore) RemoveEnrollment(_ context.Context, uid, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return ErrNotFound
	}
	kept := u.EnrolledCourses[:0]
	for _, c := range u.EnrolledCourses {
		if c != courseID {
			kept = append(kept, c)
		}
	}
	u.EnrolledCourses = kept
	s.signal()
	return nil
}

func (s *fakeUserStore) AdminExists(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Role == models.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) ListStudents(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.User
	for _, u := range s.users {
		if u.IsStudent() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) StudentIDsEnrolledIn(_ context.Context, courseID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var ids []string
	for _, u := range s.users {
		if u.IsStudent() && u.IsEnrolled(courseID) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (s *fakeUserStore) Watch(_ context.Context, _ string) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watch = make(chan struct{}, 1)
	return s.watch, nil
}

// signal must be called with mu held.
func (s *fakeUserStore) signal() {
	if s.watch == nil {
		return
	}
	select {
	case s.watch <- struct{}{}:
	default:
	}
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	records []models.Notification
	calls   int
	// failOn fails the InsertBatch call with this 1-based index.
	failOn int
	// leftBehind is how many records of the failing batch stay stored, as when a
	// partial write cannot be undone.
	leftBehind int
	clock      time.Time
	watch      chan struct{}
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{clock: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (s *fakeNotificationStore) InsertBatch(_ context.Context, batch []models.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failOn == s.calls {
		s.store(batch[:s.leftBehind])
		return s.leftBehind, errors.New("write batch aborted")
	}
	s.store(batch)
	return len(batch), nil
}

// store must be called with mu held.
func (s *fakeNotificationStore) store(batch []models.Notification) {
	if len(batch) == 0 {
		return
	}
	s.clock = s.clock.Add(time.Second)
	for _, n := range batch {
		n.ID = primitive.NewObjectID()
		n.CreatedAt = s.clock
		s.records = append(s.records, n)
	}
	s.signal()
}

func (s *fakeNotificationStore) FindByRecipient(_ context.Context, recipientID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.records {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	// oldest first; callers order the result
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeNotificationStore) FindOwned(_ context.Context, id, recipientID string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.records {
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			cp := n
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeNotificationStore) DeleteOwned(_ context.Context, id, recipientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.records {
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.signal()
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeNotificationStore) DeleteManyOwned(_ context.Context, ids []string, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	kept := s.records[:0]
	var deleted int64
	for _, n := range s.records {
		if want[n.ID.Hex()] && n.RecipientID == recipientID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.records = kept
	s.signal()
	return deleted, nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, id, recipientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID.Hex() == id && s.records[i].RecipientID == recipientID {
			s.records[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeNotificationStore) RecipientsWithDedupeKey(_ context.Context, key string, recipients []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := map[string]bool{}
	for _, r := range recipients {
		in[r] = true
	}
	seen := map[string]bool{}
	var out []string
	for _, n := range s.records {
		if n.DedupeKey == key && in[n.RecipientID] && !seen[n.RecipientID] {
			seen[n.RecipientID] = true
			out = append(out, n.RecipientID)
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) Watch(_ context.Context, _ string) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watch = make(chan struct{}, 1)
	return s.watch, nil
}

func (s *fakeNotificationStore) signal() {
	if s.watch == nil {
		return
	}
	select {
	case s.watch <- struct{}{}:
	default:
	}
}

func (s *fakeNotificationStore) forRecipient(uid string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.records {
		if n.RecipientID == uid {
			out = append(out, n)
		}
	}
	return out
}

func (s *fakeNotificationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeCourseStore struct {
	mu      sync.Mutex
	courses []*models.Course
}

func (s *fakeCourseStore) Insert(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.CourseID == course.CourseID {
			return ErrConflict
		}
	}
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	cp := *course
	s.courses = append(s.courses, &cp)
	return nil
}

func (s *fakeCourseStore) GetByID(_ context.Context, id string) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.ID.Hex() == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeCourseStore) GetByCourseID(_ context.Context, courseID string) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.CourseID == courseID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeCourseStore) Update(_ context.Context, id string, fields CourseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.ID.Hex() == id {
			c.Title, c.Slug, c.Desc = fields.Title, fields.Slug, fields.Desc
			c.Duration, c.Highlight = fields.Duration, fields.Highlight
			at := fields.UpdatedAt
			c.UpdatedAt = &at
			return nil
		}
	}
	return ErrNotFound
}

func (s *fakeCourseStore) Archive(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.ID.Hex() == id {
			c.Status = models.CourseStatusArchived
			c.ArchivedAt = &at
			return nil
		}
	}
	return ErrNotFound
}

func (s *fakeCourseStore) List(_ context.Context, status string) ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Course
	for _, c := range s.courses {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeArtifactStore struct {
	mu        sync.Mutex
	artifacts []models.Artifact
	insertErr error
}

func (s *fakeArtifactStore) Insert(_ context.Context, artifact *models.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	artifact.ID = primitive.NewObjectID()
	s.artifacts = append(s.artifacts, *artifact)
	return nil
}

func (s *fakeArtifactStore) GetByID(_ context.Context, id string) (*models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.artifacts {
		if a.ID.Hex() == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeArtifactStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.artifacts {
		if a.ID.Hex() == id {
			s.artifacts = append(s.artifacts[:i], s.artifacts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeArtifactStore) ListByCourse(_ context.Context, courseID string, kind models.NotificationKind) ([]models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Artifact
	for _, a := range s.artifacts {
		if a.CourseID == courseID && (kind == "" || a.Kind == kind) {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockObjectStorage struct {
	mock.Mock
}

func (m *mockObjectStorage) Upload(ctx context.Context, objectName string, r io.Reader) (*UploadResult, error) {
	args := m.Called(ctx, objectName, r)
	if res, ok := args.Get(0).(*UploadResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectStorage) Delete(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *mockObjectStorage) SignedURL(ctx context.Context, objectName string, duration time.Duration) (string, error) {
	args := m.Called(ctx, objectName, duration)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStorage) PrefixSize(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher captures events instead of fanning out.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.PublicationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.PublicationEvent) *WriteReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return &WriteReport{EventID: event.ID, Kind: event.Kind, CourseID: event.CourseID}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
