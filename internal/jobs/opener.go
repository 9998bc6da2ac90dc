// Package jobs — фоновые задачи ядра.
package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Leganyst/golf-club/internal/model"
)

// DueOpener открывает запись на расписания, у которых наступил open_at.
type DueOpener interface {
	OpenDue(ctx context.Context) ([]model.Schedule, error)
}

// Opener периодически вызывает OpenDue.
type Opener struct {
	svc      DueOpener
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOpener(svc DueOpener, interval time.Duration, log *zap.Logger) *Opener {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Opener{svc: svc, interval: interval, log: log}
}

// Start запускает первый проход сразу, дальше по тикеру. Повторный Start ничего не делает.
func (o *Opener) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		return
	}

	ctx, o.cancel = context.WithCancel(ctx)
	o.done = make(chan struct{})
	o.log.Info("schedule opener started", zap.Duration("interval", o.interval))

	go func() {
		defer close(o.done)
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()

		o.RunOnce(ctx)
		for {
			select {
			case <-ticker.C:
				o.RunOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop останавливает цикл и ждёт завершения текущего прохода.
func (o *Opener) Stop() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.cancel = nil
	o.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	o.log.Info("schedule opener stopped")
}

// RunOnce — один проход. Ошибки логируются, следующий тик повторит попытку.
func (o *Opener) RunOnce(ctx context.Context) int {
	opened, err := o.svc.OpenDue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			o.log.Error("open due schedules", zap.Error(err))
		}
		return 0
	}
	if len(opened) > 0 {
		ids := make([]int64, 0, len(opened))
		for _, s := range opened {
			ids = append(ids, s.ID)
		}
		o.log.Info("schedules opened", zap.Int64s("schedule_ids", ids))
	}
	return len(opened)
}
