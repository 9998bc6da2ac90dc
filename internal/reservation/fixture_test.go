package reservation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/cache"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/notify"
	"github.com/Leganyst/golf-club/internal/repository"
	"github.com/Leganyst/golf-club/internal/testutil"
)

type sentNotice struct {
	aud notify.Audience
	msg notify.Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
}

func (r *recordingNotifier) Notify(_ context.Context, aud notify.Audience, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotice{aud: aud, msg: msg})
}

func (r *recordingNotifier) byTitle(title string) []sentNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotice
	for _, s := range r.sent {
		if s.msg.Title == title {
			out = append(out, s)
		}
	}
	return out
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	db      *gorm.DB
	repo    *repository.GormReservationRepository
	mgr     *Manager
	notes   *recordingNotifier
	venue   *model.Venue
	clockMu sync.Mutex
	clock   time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		db:    gdb,
		notes: &recordingNotifier{},
		clock: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}

	f.venue = &model.Venue{Name: "Lakeside", MaxMembers: 12, ScheduleWeek: 2, IsActive: true}
	require.NoError(t, gdb.Create(f.venue).Error)

	schedules := repository.NewGormScheduleRepository(gdb)
	f.repo = repository.NewGormReservationRepository(gdb)
	roster := cache.NewRoster(cache.NewMemoryKVStore(), schedules, f.repo, time.Minute, nil)

	opts = append([]Option{WithClock(f.now)}, opts...)
	f.mgr = NewManager(Deps{
		Schedules:    schedules,
		Reservations: f.repo,
		Members:      repository.NewGormMemberRepository(gdb),
		Events:       repository.NewGormEventRepository(gdb),
		Roster:       roster,
		Notifier:     f.notes,
	}, opts...)
	return f
}

// now — строго возрастающее время, по секунде на вызов.
func (f *fixture) now() time.Time {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) schedule(date string, capacity int, teeTimes string, status model.ScheduleStatus) *model.Schedule {
	f.t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(f.t, err)
	s := &model.Schedule{
		VenueID:    f.venue.ID,
		PlayDate:   datatypes.Date(d),
		TeeTimes:   teeTimes,
		MaxMembers: capacity,
		Status:     status,
	}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

func (f *fixture) openSchedule(capacity int) *model.Schedule {
	return f.schedule("2026-05-09", capacity, "06:00,06:08,06:16", model.ScheduleStatusOpen)
}

func (f *fixture) members(n int) []model.Member {
	f.t.Helper()
	out := make([]model.Member, n)
	for i := range out {
		out[i] = model.Member{Name: fmt.Sprintf("player-%02d", i+1), Status: model.MemberStatusActive}
		require.NoError(f.t, f.db.Create(&out[i]).Error)
	}
	return out
}

func (f *fixture) admin() model.Member {
	f.t.Helper()
	a := model.Member{Name: "admin", IsAdmin: true, Status: model.MemberStatusActive}
	require.NoError(f.t, f.db.Create(&a).Error)
	return a
}

// seed вставляет заявку напрямую, минуя Apply.
func (f *fixture) seed(scheduleID, memberID int64, status model.ReservationStatus, preferred string) *model.Reservation {
	f.t.Helper()
	r := &model.Reservation{
		ScheduleID:       scheduleID,
		MemberID:         memberID,
		Status:           status,
		PreferredTeeTime: preferred,
		AppliedAt:        f.now(),
	}
	require.NoError(f.t, f.db.Create(r).Error)
	return r
}

func (f *fixture) reload(id int64) *model.Reservation {
	f.t.Helper()
	r, err := f.repo.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return r
}

func (f *fixture) statuses(scheduleID int64) map[model.ReservationStatus]int {
	f.t.Helper()
	list, err := f.repo.ListBySchedule(f.ctx, scheduleID)
	require.NoError(f.t, err)
	out := map[model.ReservationStatus]int{}
	for _, r := range list {
		out[r.Status]++
	}
	return out
}
