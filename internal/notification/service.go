package notification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/parthg/splitwise/pkg/logger"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Store interface {
	Create(ctx context.Context, userID int64, notifType, message string) (*Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Notify records a notification for a user. Failures are logged and swallowed
// so a notification error never fails the operation that triggered it.
func (s *Service) Notify(ctx context.Context, userID int64, notifType, message string) {
	if _, err := s.store.Create(ctx, userID, notifType, message); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to record notification")
	}
}

func (s *Service) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, error) {
	return s.store.ListByUser(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	err := s.store.MarkRead(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllRead(ctx, userID)
}
