package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher отправляет уведомления в фоне, не задерживая ответ вызывающему.
type Dispatcher struct {
	sender  Sender
	members MemberDirectory
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, members MemberDirectory, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sender: sender, members: members, timeout: timeout, log: log}
}

// Notify ставит отправку в фон. Отмена ctx вызывающего на доставку не влияет.
func (d *Dispatcher) Notify(ctx context.Context, aud Audience, msg Message) {
	if d == nil || d.sender == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.deliver(sendCtx, aud, msg); err != nil {
			d.log.Warn("notification delivery failed",
				zap.String("kind", string(msg.Kind)),
				zap.String("title", msg.Title),
				zap.Error(err),
			)
		}
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, aud Audience, msg Message) error {
	recipients := aud.MemberIDs
	if aud.Broadcast {
		ids, err := d.members.ListActiveIDs(ctx, aud.Except)
		if err != nil {
			return err
		}
		recipients = ids
	}
	if len(recipients) == 0 {
		return nil
	}
	return d.sender.Send(ctx, recipients, msg)
}

// Wait дожидается завершения запущенных отправок.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
