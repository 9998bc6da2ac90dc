package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Leganyst/golf-club/internal/model"
)

type fakeOpener struct {
	calls atomic.Int32
	err   error
}

func (f *fakeOpener) OpenDue(context.Context) ([]model.Schedule, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if n == 1 {
		return []model.Schedule{{ID: 7}}, nil
	}
	return nil, nil
}

func TestOpener_RunsImmediatelyAndOnTick(t *testing.T) {
	fake := &fakeOpener{}
	o := NewOpener(fake, 10*time.Millisecond, nil)

	o.Start(context.Background())
	o.Start(context.Background())
	assert.Eventually(t, func() bool { return fake.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	o.Stop()

	stopped := fake.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, fake.calls.Load())

	// повторный Stop безопасен
	o.Stop()
}

func TestOpener_RunOnceLogsErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fake := &fakeOpener{err: errors.New("db down")}
	o := NewOpener(fake, time.Hour, zap.New(core))

	assert.Equal(t, 0, o.RunOnce(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("open due schedules").Len())
}

func TestOpener_RunOnceReportsOpened(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	o := NewOpener(&fakeOpener{}, time.Hour, zap.New(core))

	assert.Equal(t, 1, o.RunOnce(context.Background()))
	entries := logs.FilterMessage("schedules opened").All()
	if assert.Len(t, entries, 1) {
		assert.Contains(t, entries[0].ContextMap(), "schedule_ids")
	}
}
