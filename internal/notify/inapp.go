package notify

import (
	"context"
	"time"

	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/repository"
)

const defaultInboxWindow = 3 * 24 * time.Hour

// InApp сохраняет уведомления во входящие участников.
type InApp struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewInApp(repo repository.NotificationRepository) *InApp {
	return &InApp{repo: repo, now: time.Now}
}

func (s *InApp) Send(ctx context.Context, recipients []int64, msg Message) error {
	if len(recipients) == 0 {
		return nil
	}
	kind := msg.Kind
	if kind == "" {
		kind = model.NotificationTypeGeneral
	}
	created := s.now().UTC()
	items := make([]model.Notification, 0, len(recipients))
	for _, id := range recipients {
		items = append(items, model.Notification{
			MemberID:  id,
			Type:      kind,
			Title:     msg.Title,
			Body:      msg.Body,
			URL:       msg.URL,
			CreatedAt: created,
		})
	}
	return s.repo.CreateBatch(ctx, items)
}

// ListInbox возвращает уведомления за окно (по умолчанию три дня).
func (s *InApp) ListInbox(ctx context.Context, memberID int64, window time.Duration) ([]model.Notification, error) {
	if window <= 0 {
		window = defaultInboxWindow
	}
	return s.repo.ListInbox(ctx, memberID, s.now().Add(-window))
}

func (s *InApp) MarkRead(ctx context.Context, memberID, id int64) error {
	return s.repo.MarkRead(ctx, memberID, id)
}
