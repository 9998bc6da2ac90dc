package reservation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/cache"
	"github.com/Leganyst/golf-club/internal/calendar"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/notify"
	"github.com/Leganyst/golf-club/internal/repository"
)

type ApplyResult struct {
	Reservation *model.Reservation
	Status      model.ReservationStatus
	// Позиция с 1: число занятых мест до вставки + 1.
	Position int
}

type ReleaseResult struct {
	Reservation      *model.Reservation
	PromotedMemberID *int64
}

// teeTimesOf — объявленные ти-таймы или значения по умолчанию.
func teeTimesOf(s *model.Schedule) []string {
	if list := s.TeeTimeList(); len(list) > 0 {
		return list
	}
	return calendar.DefaultTeeTimes
}

// almostFullThreshold — floor(max * 0.8).
func almostFullThreshold(capacity int) int {
	return capacity * 8 / 10
}

// Apply подаёт заявку участника на открытое расписание.
func (m *Manager) Apply(ctx context.Context, memberID, scheduleID int64, preferredTeeTime string) (_ *ApplyResult, err error) {
	ctx, span := m.start(ctx, "Apply",
		attribute.Int64("member.id", memberID),
		attribute.Int64("schedule.id", scheduleID),
	)
	defer func() { finish(span, err) }()

	caller, err := m.member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin {
		return nil, fmt.Errorf("%w: administrator accounts cannot apply", ErrForbidden)
	}

	unlock := m.locks.Lock(scheduleID)
	defer unlock()

	snap, err := m.refresh(ctx, scheduleID, ErrInvalidSchedule)
	if err != nil {
		return nil, err
	}
	if snap.Status != model.ScheduleStatusOpen {
		return nil, fmt.Errorf("%w: schedule %d is %s", ErrInvalidSchedule, scheduleID, snap.Status)
	}
	if _, ok := snap.Find(memberID); ok {
		return nil, ErrDuplicateReservation
	}

	sched, err := m.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, classify("load schedule", err, ErrInvalidSchedule)
	}

	preferred := strings.TrimSpace(preferredTeeTime)
	if preferred != "" {
		d, perr := calendar.ParseClock(preferred)
		if perr != nil || !slices.Contains(teeTimesOf(sched), calendar.FormatClock(d)) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTeeTime, preferredTeeTime)
		}
		preferred = calendar.FormatClock(d)
	}

	priority, err := m.priority(ctx, sched, memberID)
	if err != nil {
		return nil, err
	}

	appliedAt := m.now().UTC()
	res, before, err := m.reservations.Admit(ctx, scheduleID, memberID, func(s *model.Schedule, active int64) (*model.Reservation, error) {
		if s.Status != model.ScheduleStatusOpen {
			return nil, fmt.Errorf("%w: schedule %d is %s", ErrInvalidSchedule, s.ID, s.Status)
		}
		status := model.ReservationStatusPending
		if active >= int64(s.Capacity(nil)) {
			status = model.ReservationStatusWaitlist
		}
		return &model.Reservation{
			Status:           status,
			Priority:         priority,
			ConsecutiveCount: priority,
			PreferredTeeTime: preferred,
			AppliedAt:        appliedAt,
		}, nil
	})
	if err != nil {
		return nil, classify("admit reservation", err, ErrInvalidSchedule)
	}

	m.log.Info("reservation applied",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("schedule_id", scheduleID),
		zap.Int64("member_id", memberID),
		zap.String("status", string(res.Status)),
		zap.Int64("position", before+1),
	)
	m.record(ctx, model.EventTypeReservationApplied, &memberID, scheduleID, &res.ID, string(res.Status))

	after := m.publish(ctx, scheduleID)
	capacity := sched.Capacity(nil)
	if res.Status == model.ReservationStatusPending && int(before)+1 == almostFullThreshold(capacity) {
		m.notifyAlmostFull(ctx, sched, after, memberID, int(before)+1, capacity)
	}

	return &ApplyResult{Reservation: res, Status: res.Status, Position: int(before) + 1}, nil
}

// priority = 1, если участник был подтверждён на предыдущем выезде этого поля.
func (m *Manager) priority(ctx context.Context, s *model.Schedule, memberID int64) (int, error) {
	prev, err := m.schedules.PreviousAtVenue(ctx, s.VenueID, s.Date())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, &StorageError{Op: "load previous schedule", Err: err}
	}
	ok, err := m.reservations.WasConfirmed(ctx, prev.ID, memberID)
	if err != nil {
		return 0, &StorageError{Op: "check previous reservation", Err: err}
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

func (m *Manager) notifyAlmostFull(ctx context.Context, s *model.Schedule, snap *cache.Snapshot, applicant int64, count, capacity int) {
	var holders []int64
	if snap != nil {
		holders = snap.Holders()
	}
	others := slices.DeleteFunc(slices.Clone(holders), func(id int64) bool { return id == applicant })

	aud := notify.To(others...)
	if m.almostFull == AudienceOthers {
		aud = notify.AllExcept(append(others, applicant)...)
	}
	m.notify(ctx, aud, notify.Message{
		Kind:  model.NotificationTypeSchedule,
		Title: "Reservations closing soon",
		Body:  fmt.Sprintf("%s is almost full (%d/%d).", m.label(ctx, s.ID), count, capacity),
		URL:   scheduleURL(s.ID),
	})
}

// Cancel отменяет заявку владельцем (или администратором) и продвигает лист ожидания.
func (m *Manager) Cancel(ctx context.Context, memberID, reservationID int64) (_ *ReleaseResult, err error) {
	ctx, span := m.start(ctx, "Cancel",
		attribute.Int64("member.id", memberID),
		attribute.Int64("reservation.id", reservationID),
	)
	defer func() { finish(span, err) }()

	caller, err := m.member(ctx, memberID)
	if err != nil {
		return nil, err
	}

	guard := func(r *model.Reservation, s *model.Schedule) error {
		if r.MemberID != caller.ID && !caller.IsAdmin {
			return fmt.Errorf("%w: reservation %d belongs to another member", ErrForbidden, r.ID)
		}
		if s.Status == model.ScheduleStatusCompleted {
			return ErrCompletedSchedule
		}
		if !r.Status.IsActive() {
			return ErrAlreadyCancelled
		}
		return nil
	}
	return m.release(ctx, &caller.ID, reservationID, model.ReservationStatusCancelled, guard, model.EventTypeReservationCancelled)
}

// AdminDelete — мягкое удаление с тем же правилом продвижения, что и Cancel.
func (m *Manager) AdminDelete(ctx context.Context, reservationID int64) (_ *ReleaseResult, err error) {
	ctx, span := m.start(ctx, "AdminDelete", attribute.Int64("reservation.id", reservationID))
	defer func() { finish(span, err) }()

	guard := func(r *model.Reservation, _ *model.Schedule) error {
		if r.Status == model.ReservationStatusDeleted {
			return ErrAlreadyCancelled
		}
		return nil
	}
	return m.release(ctx, nil, reservationID, model.ReservationStatusDeleted, guard, model.EventTypeReservationDeleted)
}

func (m *Manager) release(
	ctx context.Context,
	actorID *int64,
	reservationID int64,
	to model.ReservationStatus,
	guard repository.GuardFunc,
	event model.EventType,
) (*ReleaseResult, error) {
	notFound := fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	current, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, classify("load reservation", err, notFound)
	}

	unlock := m.locks.Lock(current.ScheduleID)
	defer unlock()

	if _, err := m.refresh(ctx, current.ScheduleID, notFound); err != nil {
		return nil, err
	}

	out, err := m.reservations.Release(ctx, reservationID, to, guard)
	if err != nil {
		return nil, classify("release reservation", err, notFound)
	}

	scheduleID := out.Reservation.ScheduleID
	m.log.Info("reservation released",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("schedule_id", scheduleID),
		zap.String("from", string(out.Previous)),
		zap.String("to", string(to)),
	)
	m.record(ctx, event, actorID, scheduleID, &reservationID, string(out.Previous)+" -> "+string(to))

	result := &ReleaseResult{Reservation: out.Reservation}
	if p := out.Promoted; p != nil {
		result.PromotedMemberID = ptr(p.MemberID)
		m.record(ctx, model.EventTypeReservationPromoted, nil, scheduleID, &p.ID, "waitlist -> pending")
		m.notify(ctx, notify.To(p.MemberID), notify.Message{
			Kind:  model.NotificationTypeWaitlist,
			Title: "Moved up from the waitlist",
			Body:  fmt.Sprintf("A seat opened up: your reservation for %s is now pending.", m.label(ctx, scheduleID)),
			URL:   scheduleURL(scheduleID),
		})
	}
	m.publish(ctx, scheduleID)
	return result, nil
}

// AdminSetStatus безусловно перезаписывает статус, без проверки вместимости.
func (m *Manager) AdminSetStatus(ctx context.Context, reservationID int64, status string) (_ *model.Reservation, err error) {
	ctx, span := m.start(ctx, "AdminSetStatus",
		attribute.Int64("reservation.id", reservationID),
		attribute.String("status", status),
	)
	defer func() { finish(span, err) }()

	st, perr := model.ParseReservationStatus(status)
	if perr != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	notFound := fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	current, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, classify("load reservation", err, notFound)
	}

	unlock := m.locks.Lock(current.ScheduleID)
	defer unlock()

	if _, err := m.refresh(ctx, current.ScheduleID, notFound); err != nil {
		return nil, err
	}

	res, prev, err := m.reservations.SetStatus(ctx, reservationID, st)
	if err != nil {
		return nil, classify("set reservation status", err, notFound)
	}

	m.record(ctx, model.EventTypeStatusOverridden, nil, res.ScheduleID, &res.ID, string(prev)+" -> "+string(st))
	m.publish(ctx, res.ScheduleID)
	if st == model.ReservationStatusConfirmed {
		m.notifyConfirmed(ctx, res)
	}
	return res, nil
}

func (m *Manager) notifyConfirmed(ctx context.Context, res *model.Reservation) {
	m.notify(ctx, notify.To(res.MemberID), notify.Message{
		Kind:  model.NotificationTypeReservation,
		Title: "Reservation confirmed",
		Body:  fmt.Sprintf("Your reservation for %s is confirmed.", m.label(ctx, res.ScheduleID)),
		URL:   scheduleURL(res.ScheduleID),
	})
}

// AdminHardDelete физически удаляет заявку, лист ожидания не трогается.
func (m *Manager) AdminHardDelete(ctx context.Context, reservationID int64) (err error) {
	ctx, span := m.start(ctx, "AdminHardDelete", attribute.Int64("reservation.id", reservationID))
	defer func() { finish(span, err) }()

	notFound := fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	current, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return classify("load reservation", err, notFound)
	}

	unlock := m.locks.Lock(current.ScheduleID)
	defer unlock()

	res, err := m.reservations.HardDelete(ctx, reservationID)
	if err != nil {
		return classify("hard delete reservation", err, notFound)
	}
	m.log.Info("reservation hard deleted", zap.Int64("reservation_id", reservationID), zap.Int64("member_id", res.MemberID))
	m.record(ctx, model.EventTypeReservationPurged, nil, res.ScheduleID, &reservationID, string(res.Status))
	m.publish(ctx, res.ScheduleID)
	return nil
}

// AdminBookFor записывает участника сразу в confirmed, минуя вместимость и приоритет.
func (m *Manager) AdminBookFor(ctx context.Context, scheduleID, memberID int64) (_ *model.Reservation, err error) {
	ctx, span := m.start(ctx, "AdminBookFor",
		attribute.Int64("member.id", memberID),
		attribute.Int64("schedule.id", scheduleID),
	)
	defer func() { finish(span, err) }()

	if _, err := m.member(ctx, memberID); err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(scheduleID)
	defer unlock()

	snap, err := m.refresh(ctx, scheduleID, ErrInvalidSchedule)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Find(memberID); ok {
		return nil, ErrDuplicateReservation
	}

	appliedAt := m.now().UTC()
	res, _, err := m.reservations.Admit(ctx, scheduleID, memberID, func(*model.Schedule, int64) (*model.Reservation, error) {
		return &model.Reservation{Status: model.ReservationStatusConfirmed, AppliedAt: appliedAt}, nil
	})
	if err != nil {
		return nil, classify("book for member", err, ErrInvalidSchedule)
	}

	m.record(ctx, model.EventTypeBookedByAdmin, nil, scheduleID, &res.ID, fmt.Sprintf("member %d", memberID))
	m.publish(ctx, scheduleID)
	m.notifyConfirmed(ctx, res)
	return res, nil
}
