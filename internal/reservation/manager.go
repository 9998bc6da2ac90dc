// Package reservation — жизненный цикл заявок на ти-тайм и распределение по командам.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Leganyst/golf-club/internal/cache"
	"github.com/Leganyst/golf-club/internal/calendar"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/notify"
	"github.com/Leganyst/golf-club/internal/repository"
)

const tracerName = "github.com/Leganyst/golf-club/internal/reservation"

// Кому уходит уведомление «почти заполнено».
const (
	AudienceHolders = "holders"
	AudienceOthers  = "others"
)

// Notifier — асинхронная отправка уведомлений, результат не ожидается.
type Notifier interface {
	Notify(ctx context.Context, aud notify.Audience, msg notify.Message)
}

type Deps struct {
	Schedules    repository.ScheduleRepository
	Reservations repository.ReservationRepository
	Members      repository.MemberRepository
	Events       repository.EventRepository
	Roster       *cache.Roster
	Notifier     Notifier
	Logger       *zap.Logger
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithAlmostFullAudience(a string) Option {
	return func(m *Manager) { m.almostFull = a }
}

func WithTracer(t trace.Tracer) Option {
	return func(m *Manager) { m.tracer = t }
}

type Manager struct {
	schedules    repository.ScheduleRepository
	reservations repository.ReservationRepository
	members      repository.MemberRepository
	events       repository.EventRepository
	roster       *cache.Roster
	notifier     Notifier
	log          *zap.Logger
	tracer       trace.Tracer
	locks        *keyedMutex
	now          func() time.Time
	almostFull   string
}

func NewManager(d Deps, opts ...Option) *Manager {
	m := &Manager{
		schedules:    d.Schedules,
		reservations: d.Reservations,
		members:      d.Members,
		events:       d.Events,
		roster:       d.Roster,
		notifier:     d.Notifier,
		log:          d.Logger,
		tracer:       otel.Tracer(tracerName),
		locks:        newKeyedMutex(),
		now:          time.Now,
		almostFull:   AudienceHolders,
	}
	for _, o := range opts {
		o(m)
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m
}

func (m *Manager) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "reservation."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// member загружает и проверяет участника, выполняющего действие.
func (m *Manager) member(ctx context.Context, id int64) (*model.Member, error) {
	mem, err := calendar.ValidateMember(ctx, m.members, id)
	switch {
	case err == nil:
		return mem, nil
	case errors.Is(err, calendar.ErrInvalidMemberID), errors.Is(err, calendar.ErrMemberNotFound):
		return nil, fmt.Errorf("%w: member %d", ErrNotFound, id)
	case errors.Is(err, calendar.ErrMemberInactive):
		return nil, fmt.Errorf("%w: member %d is inactive", ErrForbidden, id)
	}
	return nil, &StorageError{Op: "load member", Err: err}
}

// refresh перечитывает состав расписания перед решением.
func (m *Manager) refresh(ctx context.Context, scheduleID int64, notFound error) (*cache.Snapshot, error) {
	snap, err := m.roster.Refresh(ctx, scheduleID)
	if err != nil {
		return nil, classify("refresh roster", err, notFound)
	}
	return snap, nil
}

// publish обновляет кэш после изменения. Ошибка не влияет на результат операции.
func (m *Manager) publish(ctx context.Context, scheduleID int64) *cache.Snapshot {
	snap, err := m.roster.Refresh(ctx, scheduleID)
	if err != nil {
		m.log.Warn("roster refresh after write failed", zap.Int64("schedule_id", scheduleID), zap.Error(err))
		m.roster.Invalidate(ctx, scheduleID)
		return nil
	}
	return snap
}

func (m *Manager) notify(ctx context.Context, aud notify.Audience, msg notify.Message) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, aud, msg)
}

// record пишет событие аудита; сбой только логируется.
func (m *Manager) record(ctx context.Context, typ model.EventType, actorID *int64, scheduleID int64, reservationID *int64, details string) {
	if m.events == nil {
		return
	}
	e := &model.Event{
		EventType:     typ,
		ActorID:       actorID,
		ScheduleID:    &scheduleID,
		ReservationID: reservationID,
		Details:       details,
	}
	if err := m.events.Create(ctx, e); err != nil {
		m.log.Warn("audit event not stored", zap.String("type", string(typ)), zap.Error(err))
	}
}

// label — "2026-05-09 Lakeside" для текстов уведомлений.
func (m *Manager) label(ctx context.Context, scheduleID int64) string {
	s, err := m.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return fmt.Sprintf("schedule #%d", scheduleID)
	}
	name := ""
	if s.Venue != nil {
		name = " " + s.Venue.Name
	}
	return calendar.FormatPlayDate(s.Date()) + name
}

func scheduleURL(id int64) string { return fmt.Sprintf("/schedules/%d", id) }

func ptr[T any](v T) *T { return &v }

// MyReservations — заявки участника с расписанием и полем.
func (m *Manager) MyReservations(ctx context.Context, memberID int64) ([]model.Reservation, error) {
	list, err := m.reservations.ListByMember(ctx, memberID)
	if err != nil {
		return nil, &StorageError{Op: "list member reservations", Err: err}
	}
	return list, nil
}

// ScheduleRoster — все заявки расписания с участниками в порядке (priority, applied_at).
func (m *Manager) ScheduleRoster(ctx context.Context, scheduleID int64) (*model.Schedule, []model.Reservation, error) {
	s, err := m.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, nil, classify("load schedule", err, fmt.Errorf("%w: schedule %d", ErrNotFound, scheduleID))
	}
	list, err := m.reservations.ListWithMembers(ctx, scheduleID)
	if err != nil {
		return nil, nil, &StorageError{Op: "list roster", Err: err}
	}
	return s, list, nil
}
