package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"coachingportal/models"
)

type InboxView string

const (
	// ViewEnrolled shows broadcast announcements plus records for courses the recipient
	// is enrolled in right now.
	ViewEnrolled InboxView = "enrolled"
	// ViewAll shows every record addressed to the recipient.
	ViewAll InboxView = "all"
)

func ParseInboxView(v string) (InboxView, error) {
	switch InboxView(v) {
	case "", ViewEnrolled:
		return ViewEnrolled, nil
	case ViewAll:
		return ViewAll, nil
	}
	return "", fmt.Errorf("%w: unknown inbox view %q", ErrValidation, v)
}

const (
	RouteNotes   = "/student/notes"
	RouteResults = "/student/results"
	RouteCourses = "/student/courses"
)

// RouteFor maps a notification kind to its click-through destination.
func RouteFor(kind models.NotificationKind) string {
	switch kind {
	case models.KindNotes:
		return RouteNotes
	case models.KindResult:
		return RouteResults
	default:
		return RouteCourses
	}
}

// Visible reports whether n belongs in the enrolled view for the given enrollment.
func Visible(n *models.Notification, enrolled []string) bool {
	if n.IsBroadcast() {
		return n.Kind == models.KindCourse
	}
	for _, c := range enrolled {
		if c == *n.CourseID {
			return true
		}
	}
	return false
}

type InboxService struct {
	notifications NotificationStore
	users         UserStore
	logger        *log.Logger
}

func NewInboxService(notifications NotificationStore, users UserStore, logger *log.Logger) *InboxService {
	if logger == nil {
		logger = log.New(log.Writer(), "[INBOX] ", log.LstdFlags)
	}
	return &InboxService{notifications: notifications, users: users, logger: logger}
}

// List returns the recipient's notifications newest first.
func (s *InboxService) List(ctx context.Context, recipientID string, view InboxView) ([]models.Notification, error) {
	all, err := s.notifications.FindByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	items := all
	if view != ViewAll {
		user, err := s.users.GetByID(ctx, recipientID)
		if err != nil {
			return nil, fmt.Errorf("failed to load recipient: %w", err)
		}
		items = make([]models.Notification, 0, len(all))
		for i := range all {
			if Visible(&all[i], user.EnrolledCourses) {
				items = append(items, all[i])
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Subscribe emits the full visible set once, then again after every change to the
// recipient's notifications or (for the enrolled view) enrollment. The channel closes
// when ctx is done or a watch ends.
func (s *InboxService) Subscribe(ctx context.Context, recipientID string, view InboxView) (<-chan []models.Notification, error) {
	notifChanges, err := s.notifications.Watch(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch notifications: %w", err)
	}

	var userChanges <-chan struct{}
	if view != ViewAll {
		userChanges, err = s.users.Watch(ctx, recipientID)
		if err != nil {
			return nil, fmt.Errorf("failed to watch enrollment: %w", err)
		}
	}

	out := make(chan []models.Notification, 1)
	go func() {
		defer close(out)

		emit := func() bool {
			items, err := s.List(ctx, recipientID, view)
			if err != nil {
				s.logger.Printf("Inbox refresh for %s failed: %v", recipientID, err)
				return ctx.Err() == nil
			}
			select {
			case out <- items:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-notifChanges:
				if !ok {
					return
				}
			case _, ok := <-userChanges:
				if !ok {
					return
				}
			}
			if !emit() {
				return
			}
		}
	}()

	return out, nil
}

// Consume deletes one notification. Deleting a record that is already gone is a no-op.
func (s *InboxService) Consume(ctx context.Context, recipientID, notificationID string) error {
	if _, err := s.notifications.DeleteOwned(ctx, notificationID, recipientID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// ConsumeAll deletes whatever is currently visible; records removed concurrently are ignored.
func (s *InboxService) ConsumeAll(ctx context.Context, recipientID string, view InboxView) (int64, error) {
	items, err := s.List(ctx, recipientID, view)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ID.Hex())
	}

	deleted, err := s.notifications.DeleteManyOwned(ctx, ids, recipientID)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return deleted, nil
}

// MarkRead flags a notification as read. Marking an already read record succeeds.
func (s *InboxService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	found, err := s.notifications.MarkRead(ctx, notificationID, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// Open consumes the notification and returns where the client should navigate.
func (s *InboxService) Open(ctx context.Context, recipientID, notificationID string) (string, error) {
	n, err := s.notifications.FindOwned(ctx, notificationID, recipientID)
	if err != nil {
		return "", err
	}
	if err := s.Consume(ctx, recipientID, notificationID); err != nil {
		return "", err
	}
	return RouteFor(n.Kind), nil
}
