// Package schedule — администрирование игровых дней: создание, генерация на год,
// открытие записи по расписанию, завершение и удаление.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/cache"
	"github.com/Leganyst/golf-club/internal/calendar"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/notify"
	"github.com/Leganyst/golf-club/internal/repository"
)

var (
	ErrScheduleExists          = errors.New("schedule already exists for this venue and date")
	ErrScheduleHasReservations = errors.New("schedule has reservations")
	ErrNotFound                = errors.New("not found")
	ErrInvalidInput            = errors.New("invalid schedule parameters")
)

type Notifier interface {
	Notify(ctx context.Context, aud notify.Audience, msg notify.Message)
}

type CreateInput struct {
	VenueID  int64
	PlayDate time.Time
	// Пусто — ти-таймы строятся по настройкам поля.
	TeeTimes   []string
	MaxMembers int
	Notes      string
	// Если в будущем, расписание создаётся в pending и открывается джобой.
	OpenAt *time.Time
}

// UpdateInput — частичное изменение, nil-поля не трогаются.
type UpdateInput struct {
	TeeTimes   []string
	MaxMembers *int
	Status     *model.ScheduleStatus
	Notes      *string
	OpenAt     *time.Time
}

// Summary — расписание в списке участника.
type Summary struct {
	Schedule      model.Schedule          `json:"schedule"`
	Reserved      int                     `json:"reserved"`
	Waitlisted    int                     `json:"waitlisted"`
	ReservationID *int64                  `json:"reservation_id,omitempty"`
	MyStatus      model.ReservationStatus `json:"my_status,omitempty"`
}

type Service struct {
	venues    repository.VenueRepository
	schedules repository.ScheduleRepository
	events    repository.EventRepository
	roster    *cache.Roster
	notifier  Notifier
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	venues repository.VenueRepository,
	schedules repository.ScheduleRepository,
	events repository.EventRepository,
	roster *cache.Roster,
	notifier Notifier,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		venues:    venues,
		schedules: schedules,
		events:    events,
		roster:    roster,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// SetClock подменяет часы (тесты, CLI с --now).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) venue(ctx context.Context, id int64) (*model.Venue, error) {
	v, err := s.venues.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: venue %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load venue: %w", err)
	}
	return v, nil
}

// teeSheetOf — ти-таймы по настройкам поля.
func teeSheetOf(v *model.Venue) ([]string, error) {
	start := v.TeeTimeStart
	if start == "" {
		start = calendar.DefaultTeeTimes[0]
	}
	interval := v.TeeIntervalMin
	if interval <= 0 {
		interval = model.DefaultTeeIntervalMin
	}
	count := v.TeeCount
	if count <= 0 {
		count = model.DefaultTeeCount
	}
	return calendar.TeeSheet(start, interval, count)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Schedule, error) {
	if in.PlayDate.IsZero() {
		return nil, fmt.Errorf("%w: play date is required", ErrInvalidInput)
	}
	if in.MaxMembers < 0 {
		return nil, fmt.Errorf("%w: max members must be positive", ErrInvalidInput)
	}
	v, err := s.venue(ctx, in.VenueID)
	if err != nil {
		return nil, err
	}

	tees, err := calendar.NormalizeTeeTimes(in.TeeTimes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(tees) == 0 {
		if tees, err = teeSheetOf(v); err != nil {
			return nil, fmt.Errorf("%w: venue tee sheet: %v", ErrInvalidInput, err)
		}
	}

	capacity := in.MaxMembers
	if capacity == 0 {
		capacity = v.Capacity()
	}

	sched := &model.Schedule{
		VenueID:    v.ID,
		PlayDate:   datatypes.Date(dayOf(in.PlayDate)),
		TeeTimes:   calendar.JoinTeeTimes(tees),
		MaxMembers: capacity,
		Status:     model.ScheduleStatusOpen,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if in.OpenAt != nil {
		at := in.OpenAt.UTC()
		sched.OpenAt = &at
		if at.After(s.now()) {
			sched.Status = model.ScheduleStatusPending
		}
	}

	if err := s.insert(ctx, sched); err != nil {
		return nil, err
	}
	sched.Venue = v
	s.log.Info("schedule created",
		zap.Int64("schedule_id", sched.ID),
		zap.Int64("venue_id", v.ID),
		zap.String("play_date", sched.Date().Format(time.DateOnly)),
		zap.String("status", string(sched.Status)),
	)
	return sched, nil
}

func (s *Service) insert(ctx context.Context, sched *model.Schedule) error {
	exists, err := s.schedules.ExistsOn(ctx, sched.VenueID, sched.Date())
	if err != nil {
		return fmt.Errorf("check schedule: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrScheduleExists, sched.Date().Format(time.DateOnly))
	}
	if err := s.schedules.Create(ctx, sched); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrScheduleExists, sched.Date().Format(time.DateOnly))
		}
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GenerateYear создаёт по расписанию на каждый месяц года: суббота
// ScheduleWeek-й недели. Существующие даты и месяцы без такой субботы
// пропускаются. Пустой venueIDs — все активные поля.
func (s *Service) GenerateYear(ctx context.Context, year int, venueIDs []int64) ([]model.Schedule, error) {
	if year < 2000 || year > 9999 {
		return nil, fmt.Errorf("%w: year %d", ErrInvalidInput, year)
	}
	venues, err := s.venues.ListActive(ctx, venueIDs)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}

	var created []model.Schedule
	for i := range venues {
		v := &venues[i]
		tees, err := teeSheetOf(v)
		if err != nil {
			s.log.Warn("venue tee sheet invalid, using defaults", zap.Int64("venue_id", v.ID), zap.Error(err))
			tees = calendar.DefaultTeeTimes
		}
		week := max(v.ScheduleWeek, 1)
		for _, d := range calendar.YearlyDates(year, week, time.Saturday) {
			sched := &model.Schedule{
				VenueID:    v.ID,
				PlayDate:   datatypes.Date(d),
				TeeTimes:   calendar.JoinTeeTimes(tees),
				MaxMembers: v.Capacity(),
				Status:     model.ScheduleStatusOpen,
			}
			err := s.insert(ctx, sched)
			if errors.Is(err, ErrScheduleExists) {
				continue
			}
			if err != nil {
				return created, err
			}
			created = append(created, *sched)
		}
	}
	s.log.Info("yearly schedules generated", zap.Int("year", year), zap.Int("created", len(created)))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Schedule, error) {
	sched, err := s.schedules.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: schedule %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	return sched, nil
}

// Update меняет параметры расписания. Заявки не пересчитываются.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*model.Schedule, error) {
	sched, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.TeeTimes != nil {
		tees, err := calendar.NormalizeTeeTimes(in.TeeTimes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		fields["tee_times"] = calendar.JoinTeeTimes(tees)
	}
	if in.MaxMembers != nil {
		if *in.MaxMembers <= 0 {
			return nil, fmt.Errorf("%w: max members must be positive", ErrInvalidInput)
		}
		fields["max_members"] = *in.MaxMembers
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, *in.Status)
		}
		fields["status"] = *in.Status
	}
	if in.Notes != nil {
		fields["notes"] = strings.TrimSpace(*in.Notes)
	}
	if in.OpenAt != nil {
		fields["open_at"] = in.OpenAt.UTC()
	}
	if len(fields) == 0 {
		return sched, nil
	}

	if err := s.schedules.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

func (s *Service) Complete(ctx context.Context, id int64) error {
	err := s.schedules.UpdateStatus(ctx, id, model.ScheduleStatusCompleted)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: schedule %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("complete schedule: %w", err)
	}
	s.invalidate(ctx, id)
	s.log.Info("schedule completed", zap.Int64("schedule_id", id))
	return nil
}

// Delete удаляет расписание, только если на него нет ни одной заявки.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.schedules.Delete(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: schedule %d", ErrNotFound, id)
	case errors.Is(err, repository.ErrHasReservations):
		return ErrScheduleHasReservations
	case err != nil:
		return fmt.Errorf("delete schedule: %w", err)
	}
	s.invalidate(ctx, id)
	s.log.Info("schedule deleted", zap.Int64("schedule_id", id))
	return nil
}

// OpenDue открывает запись на pending-расписания с наступившим open_at
// и рассылает объявление всем активным участникам.
func (s *Service) OpenDue(ctx context.Context) ([]model.Schedule, error) {
	opened, err := s.schedules.OpenDue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("open due schedules: %w", err)
	}
	for i := range opened {
		sched := &opened[i]
		s.invalidate(ctx, sched.ID)
		if s.events != nil {
			e := &model.Event{EventType: model.EventTypeScheduleOpened, ScheduleID: &sched.ID}
			if err := s.events.Create(ctx, e); err != nil {
				s.log.Warn("audit event not stored", zap.Int64("schedule_id", sched.ID), zap.Error(err))
			}
		}
		s.log.Info("schedule opened", zap.Int64("schedule_id", sched.ID))
		if s.notifier != nil {
			s.notifier.Notify(ctx, notify.AllExcept(), notify.Message{
				Kind:  model.NotificationTypeSchedule,
				Title: "Reservations are open",
				Body:  fmt.Sprintf("Reservations for %s are now open.", calendar.FormatPlayDate(sched.Date())),
				URL:   fmt.Sprintf("/schedules/%d", sched.ID),
			})
		}
	}
	return opened, nil
}

// ListUpcoming — незавершённые расписания с даты from с числом занятых мест
// и заявкой участника (memberID = 0 — без неё). Составы берутся из кэша.
func (s *Service) ListUpcoming(ctx context.Context, memberID int64, from time.Time, page, size int) (calendar.Page[Summary], error) {
	list, err := s.schedules.ListFrom(ctx, from)
	if err != nil {
		return calendar.Page[Summary]{}, fmt.Errorf("list schedules: %w", err)
	}

	out := make([]Summary, 0, len(list))
	for _, sched := range list {
		sum := Summary{Schedule: sched}
		snap, err := s.roster.Snapshot(ctx, sched.ID)
		if err != nil {
			return calendar.Page[Summary]{}, fmt.Errorf("roster %d: %w", sched.ID, err)
		}
		sum.Reserved = snap.Active()
		sum.Waitlisted = len(snap.Entries) - sum.Reserved
		if e, ok := snap.Find(memberID); ok && memberID > 0 {
			sum.ReservationID = &e.ReservationID
			sum.MyStatus = e.Status
		}
		out = append(out, sum)
	}
	return calendar.Paginate(out, page, size), nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.roster != nil {
		s.roster.Invalidate(ctx, id)
	}
}
