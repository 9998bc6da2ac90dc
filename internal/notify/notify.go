// Package notify доставляет уведомления участникам клуба: в приложение,
// в RabbitMQ и в MQTT. Отправка асинхронная, ошибки только логируются.
package notify

import (
	"context"
	"errors"

	"github.com/Leganyst/golf-club/internal/model"
)

// Message — содержимое уведомления.
type Message struct {
	Kind  model.NotificationType `json:"kind"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	URL   string                 `json:"url,omitempty"`
}

// Audience — кому отправлять. Если Broadcast, то всем активным
// участникам, кроме Except; иначе ровно MemberIDs.
type Audience struct {
	MemberIDs []int64
	Broadcast bool
	Except    []int64
}

func To(ids ...int64) Audience { return Audience{MemberIDs: ids} }

func AllExcept(ids ...int64) Audience { return Audience{Broadcast: true, Except: ids} }

// Sender доставляет сообщение уже разрешённому списку получателей.
type Sender interface {
	Send(ctx context.Context, recipients []int64, msg Message) error
}

// MemberDirectory разрешает широковещательную аудиторию.
type MemberDirectory interface {
	ListActiveIDs(ctx context.Context, except []int64) ([]int64, error)
}

// Fanout отправляет во все каналы, не останавливаясь на ошибке.
type Fanout []Sender

func (f Fanout) Send(ctx context.Context, recipients []int64, msg Message) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, recipients, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
