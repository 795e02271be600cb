package services

import (
	"context"
	"testing"
	"time"

	"coachingportal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func validCourse(title string) CourseInput {
	return CourseInput{Title: title, Desc: "Two year classroom programme", Duration: "2 years", Features: []string{" Tests ", "", "Notes"}}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"NEET Crash Course":    "neet-crash-course",
		"  JEE (Mains) 2025! ": "jee-mains-2025",
		"Class-10 / Science":   "class-10-science",
		"***":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.Equal(t, "COU-2024-neet-crash-course", CourseIDFor("NEET Crash Course", 2024))
}

func TestCourseService_CreatePublishesBroadcast(t *testing.T) {
	courses := &fakeCourseStore{}
	pub := &recordingPublisher{}
	svc := NewCourseService(courses, pub)
	svc.now = func() time.Time { return fixedNow }

	course, err := svc.Create(context.Background(), "admin-1", validCourse("NEET Crash Course"))
	require.NoError(t, err)

	assert.Equal(t, "COU-2024-neet-crash-course", course.CourseID)
	assert.Equal(t, models.CourseStatusActive, course.Status)
	assert.Equal(t, 2024, course.BatchYear)
	assert.Equal(t, []string{"Tests", "Notes"}, course.Features)
	assert.Equal(t, "admin-1", course.CreatedBy)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, models.KindCourse, event.Kind)
	assert.Empty(t, event.CourseID, "course announcements are broadcast")
	assert.Equal(t, "NEET Crash Course", event.Title)
	assert.Equal(t, course.ID.Hex(), event.ArtifactID)
}

func TestCourseService_CreateReachesEveryStudent(t *testing.T) {
	users := newFakeUserStore(student("s1"), student("s2", "OTHER"), models.User{ID: "adm", Role: models.RoleAdmin})
	store := newFakeNotificationStore()
	svc := NewCourseService(&fakeCourseStore{}, newTestPublisher(users, store))

	_, err := svc.Create(context.Background(), "adm", validCourse("Foundation"))
	require.NoError(t, err)

	assert.Len(t, store.forRecipient("s1"), 1)
	assert.Len(t, store.forRecipient("s2"), 1)
	assert.Empty(t, store.forRecipient("adm"))
}

func TestCourseService_CreateDuplicateTitleSameYear(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewCourseService(&fakeCourseStore{}, pub)
	svc.now = func() time.Time { return fixedNow }

	_, err := svc.Create(context.Background(), "a", validCourse("NEET Crash Course"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "a", validCourse("neet   crash course"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, pub.events, 1, "rejected creates do not notify")
}

func TestCourseService_CreateValidation(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewCourseService(&fakeCourseStore{}, pub)

	_, err := svc.Create(context.Background(), "a", CourseInput{Title: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), "a", validCourse("!!!"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, pub.events)
}

func TestCourseService_UpdateDoesNotNotify(t *testing.T) {
	courses := &fakeCourseStore{}
	pub := &recordingPublisher{}
	svc := NewCourseService(courses, pub)

	course, err := svc.Create(context.Background(), "a", validCourse("Physics"))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), course.ID.Hex(), validCourse("Physics Advanced"))
	require.NoError(t, err)
	assert.Equal(t, "Physics Advanced", updated.Title)
	assert.Equal(t, "physics-advanced", updated.Slug)
	assert.Equal(t, course.CourseID, updated.CourseID, "course id is stable")
	assert.NotNil(t, updated.UpdatedAt)
	assert.Len(t, pub.events, 1)

	_, err = svc.Update(context.Background(), "missing", validCourse("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseService_Archive(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := NewCourseService(courses, &recordingPublisher{})

	course, err := svc.Create(context.Background(), "a", validCourse("Chemistry"))
	require.NoError(t, err)
	require.NoError(t, svc.Archive(context.Background(), course.ID.Hex()))

	got, err := courses.GetByID(context.Background(), course.ID.Hex())
	require.NoError(t, err)
	assert.False(t, got.IsActive())
	assert.NotNil(t, got.ArchivedAt)

	active, err := svc.List(context.Background(), models.CourseStatusActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.List(context.Background(), "deleted")
	assert.ErrorIs(t, err, ErrValidation)
}
