package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/repository"
)

// Entry — одна живая заявка в составе расписания.
type Entry struct {
	ReservationID int64                   `json:"reservation_id"`
	MemberID      int64                   `json:"member_id"`
	Status        model.ReservationStatus `json:"status"`
	AppliedAt     time.Time               `json:"applied_at"`
	Team          int                     `json:"team,omitempty"`
}

// Snapshot — состав расписания на момент загрузки.
// Entries упорядочены как в списке администратора: (priority, applied_at, id).
type Snapshot struct {
	ScheduleID int64                `json:"schedule_id"`
	Status     model.ScheduleStatus `json:"status"`
	Capacity   int                  `json:"capacity"`
	Entries    []Entry              `json:"entries"`
	LoadedAt   time.Time            `json:"loaded_at"`
}

// Active — число pending+confirmed.
func (s *Snapshot) Active() int {
	n := 0
	for _, e := range s.Entries {
		if e.Status.HoldsSeat() {
			n++
		}
	}
	return n
}

// Holders — участники, занимающие место.
func (s *Snapshot) Holders() []int64 {
	out := make([]int64, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Status.HoldsSeat() {
			out = append(out, e.MemberID)
		}
	}
	return out
}

// Find возвращает живую заявку участника.
func (s *Snapshot) Find(memberID int64) (Entry, bool) {
	for _, e := range s.Entries {
		if e.MemberID == memberID {
			return e, true
		}
	}
	return Entry{}, false
}

// Roster кэширует составы расписаний. Snapshot может быть устаревшим;
// перед любым решением вызывающий обязан получить состав через Refresh.
type Roster struct {
	kv           KVStore
	schedules    repository.ScheduleRepository
	reservations repository.ReservationRepository
	ttl          time.Duration
	log          *zap.Logger
	now          func() time.Time
}

func NewRoster(
	kv KVStore,
	schedules repository.ScheduleRepository,
	reservations repository.ReservationRepository,
	ttl time.Duration,
	log *zap.Logger,
) *Roster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Roster{
		kv:           kv,
		schedules:    schedules,
		reservations: reservations,
		ttl:          ttl,
		log:          log,
		now:          time.Now,
	}
}

func rosterKey(scheduleID int64) string {
	return fmt.Sprintf("golf:roster:%d", scheduleID)
}

// Refresh перечитывает состав из хранилища и обновляет кэш.
// Ошибки записи в кэш не фатальны.
func (r *Roster) Refresh(ctx context.Context, scheduleID int64) (*Snapshot, error) {
	s, err := r.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	list, err := r.reservations.ListBySchedule(ctx, scheduleID,
		model.ReservationStatusPending,
		model.ReservationStatusConfirmed,
		model.ReservationStatusWaitlist,
	)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ScheduleID: s.ID,
		Status:     s.Status,
		Capacity:   s.Capacity(s.Venue),
		Entries:    make([]Entry, 0, len(list)),
		LoadedAt:   r.now().UTC(),
	}
	for _, res := range list {
		snap.Entries = append(snap.Entries, Entry{
			ReservationID: res.ID,
			MemberID:      res.MemberID,
			Status:        res.Status,
			AppliedAt:     res.AppliedAt,
			Team:          res.Team(),
		})
	}

	b, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	if err := r.kv.Set(ctx, rosterKey(scheduleID), string(b), r.ttl); err != nil {
		r.log.Warn("roster cache set failed", zap.Int64("schedule_id", scheduleID), zap.Error(err))
	}
	return snap, nil
}

// Snapshot отдаёт закэшированный состав, при промахе загружает его.
func (r *Roster) Snapshot(ctx context.Context, scheduleID int64) (*Snapshot, error) {
	raw, err := r.kv.Get(ctx, rosterKey(scheduleID))
	if err == nil {
		var snap Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err == nil {
			return &snap, nil
		}
		r.log.Warn("roster cache entry corrupted", zap.Int64("schedule_id", scheduleID))
	} else if !errors.Is(err, ErrCacheMiss) {
		r.log.Warn("roster cache get failed", zap.Int64("schedule_id", scheduleID), zap.Error(err))
	}
	return r.Refresh(ctx, scheduleID)
}

// Invalidate сбрасывает кэш после изменения состава.
func (r *Roster) Invalidate(ctx context.Context, scheduleID int64) {
	if err := r.kv.Del(ctx, rosterKey(scheduleID)); err != nil {
		r.log.Warn("roster cache del failed", zap.Int64("schedule_id", scheduleID), zap.Error(err))
	}
}
