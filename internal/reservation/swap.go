package reservation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Leganyst/golf-club/internal/model"
)

// SwapTeams меняет местами команды и ти-таймы двух заявок одного расписания.
// expectedTeam > 0 должен совпадать с текущей командой первой заявки.
func (m *Manager) SwapTeams(ctx context.Context, aID, bID int64, expectedTeam int) (_ [2]*model.Reservation, err error) {
	ctx, span := m.start(ctx, "SwapTeams",
		attribute.Int64("reservation.a", aID),
		attribute.Int64("reservation.b", bID),
	)
	defer func() { finish(span, err) }()

	var out [2]*model.Reservation
	if aID == bID {
		return out, fmt.Errorf("%w: cannot swap a reservation with itself", ErrInvalidSwap)
	}

	notFound := fmt.Errorf("%w: reservation %d or %d", ErrNotFound, aID, bID)
	first, err := m.reservations.GetByID(ctx, aID)
	if err != nil {
		return out, classify("load reservation", err, notFound)
	}

	unlock := m.locks.Lock(first.ScheduleID)
	defer unlock()

	guard := func(a, b *model.Reservation) error {
		if a.ScheduleID != b.ScheduleID {
			return fmt.Errorf("%w: reservations belong to different schedules", ErrInvalidSwap)
		}
		if !a.Status.IsActive() || !b.Status.IsActive() {
			return fmt.Errorf("%w: both reservations must be active", ErrInvalidSwap)
		}
		if a.TeamNumber == nil || b.TeamNumber == nil {
			return fmt.Errorf("%w: both reservations must have a team", ErrInvalidSwap)
		}
		if expectedTeam > 0 && a.Team() != expectedTeam {
			return fmt.Errorf("%w: reservation %d is in team %d, not %d", ErrTeamMismatch, a.ID, a.Team(), expectedTeam)
		}
		return nil
	}

	a, b, err := m.reservations.Swap(ctx, aID, bID, guard)
	if err != nil {
		return out, classify("swap teams", err, notFound)
	}

	m.log.Info("teams swapped", zap.Int64("a", aID), zap.Int64("b", bID), zap.Int("a_team", a.Team()), zap.Int("b_team", b.Team()))
	m.record(ctx, model.EventTypeTeamsSwapped, nil, a.ScheduleID, &a.ID, fmt.Sprintf("with %d", b.ID))
	m.publish(ctx, a.ScheduleID)
	return [2]*model.Reservation{a, b}, nil
}

// RevertSwap возвращает обе стороны обмена к командам до обмена.
func (m *Manager) RevertSwap(ctx context.Context, reservationID int64) (_ [2]*model.Reservation, err error) {
	ctx, span := m.start(ctx, "RevertSwap", attribute.Int64("reservation.id", reservationID))
	defer func() { finish(span, err) }()

	var out [2]*model.Reservation
	notFound := fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	current, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return out, classify("load reservation", err, notFound)
	}
	if !current.HasSwapHistory() {
		return out, ErrNoSwapHistory
	}

	unlock := m.locks.Lock(current.ScheduleID)
	defer unlock()

	guard := func(r, _ *model.Reservation) error {
		if !r.HasSwapHistory() {
			return ErrNoSwapHistory
		}
		return nil
	}
	r, partner, err := m.reservations.RevertSwap(ctx, reservationID, guard)
	if err != nil {
		return out, classify("revert swap", err, notFound)
	}

	m.record(ctx, model.EventTypeSwapReverted, nil, r.ScheduleID, &r.ID, fmt.Sprintf("with %d", partner.ID))
	m.publish(ctx, r.ScheduleID)
	return [2]*model.Reservation{r, partner}, nil
}
