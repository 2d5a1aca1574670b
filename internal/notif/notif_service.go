package notif

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tuitter/internal/dbsql"
)

// Event is what a write path reports when it wants the receiver notified.
type Event struct {
	UserID        string // receiver
	ActorID       string // who did it
	Type          string
	Content       string
	RelatedPostID *string
}

// Emitter is the seam the write paths (feed, user) depend on. A failed
// notification write never fails the request that caused it.
type Emitter interface {
	EmitBestEffort(ctx context.Context, event Event)
}

type NotifService struct {
	repo NotificationRepository
	log  *logrus.Logger
}

func NewNotifService(repo NotificationRepository, log *logrus.Logger) *NotifService {
	return &NotifService{repo: repo, log: log}
}

// Emit stores a notification row for the receiver. Acting on your own
// post or profile does not notify you.
func (s *NotifService) Emit(ctx context.Context, event Event) error {
	if event.UserID == event.ActorID {
		return nil
	}
	n := &dbsql.Notification{
		UserID:        event.UserID,
		ActorID:       event.ActorID,
		Type:          event.Type,
		Content:       event.Content,
		RelatedPostID: event.RelatedPostID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// EmitBestEffort is Emit for callers whose request must not fail on a
// notification write; the error is logged and swallowed.
func (s *NotifService) EmitBestEffort(ctx context.Context, event Event) {
	if err := s.Emit(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"type":     event.Type,
			"receiver": event.UserID,
		}).WithError(err).Warn("dropping notification")
	}
}

func (s *NotifService) List(ctx context.Context, userID string, unreadOnly bool) ([]dbsql.Notification, error) {
	return s.repo.ListForUser(ctx, userID, unreadOnly)
}

func (s *NotifService) MarkRead(ctx context.Context, notificationID string) (bool, error) {
	return s.repo.MarkRead(ctx, notificationID)
}
