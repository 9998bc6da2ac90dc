package reservation

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Leganyst/golf-club/internal/model"
)

// TeamSize — игроков в одной команде (на одном ти-тайме).
const TeamSize = 4

// Candidate — входные данные алгоритма по одной заявке.
type Candidate struct {
	ID               int64
	Priority         int
	AppliedAt        time.Time
	PreferredTeeTime string
}

// Placement — итог по заявке. Team с 1.
type Placement struct {
	ID      int64
	Team    int
	TeeTime string
	Status  model.ReservationStatus
	// false — места в командах не хватило: лист ожидания без команды, Team == 0.
	Seated bool
}

type Plan struct {
	// В порядке справедливого ранжирования.
	Placements []Placement
	Confirmed  int
	Waitlisted int
	Unseated   int
}

func byRank(a, b Candidate) int {
	return cmp.Or(
		cmp.Compare(a.Priority, b.Priority),
		a.AppliedAt.Compare(b.AppliedAt),
		cmp.Compare(a.ID, b.ID),
	)
}

func byApplied(a, b Candidate) int {
	return cmp.Or(a.AppliedAt.Compare(b.AppliedAt), cmp.Compare(a.ID, b.ID))
}

// BuildPlan распределяет заявки по командам.
//
// Сначала каждый объявленный ти-тайм заполняется теми, кто его предпочёл, в
// порядке подачи. Остальные расходятся по командам начиная с предпочтённой
// (или первой) вперёд, затем с первой по кругу. Первые maxMembers рассаженных
// в порядке (priority, applied_at, id) подтверждаются, прочие в листе ожидания.
// Не поместившиеся в teams*TeamSize остаются без команды в листе ожидания.
func BuildPlan(cands []Candidate, teeTimes []string, maxMembers int) Plan {
	nTeams := len(teeTimes)
	slotIndex := make(map[string]int, nTeams)
	for i, t := range teeTimes {
		slotIndex[t] = i + 1
	}

	applied := slices.Clone(cands)
	slices.SortStableFunc(applied, byApplied)

	team := make(map[int64]int, len(cands))
	occupancy := make([]int, nTeams+1)

	type pending struct {
		c    Candidate
		pref int // 0 — без предпочтения
	}
	var unassigned []pending

	// проход по предпочтениям
	for slot := 1; slot <= nTeams; slot++ {
		for _, c := range applied {
			if slotIndex[c.PreferredTeeTime] != slot {
				continue
			}
			if occupancy[slot] < TeamSize {
				team[c.ID] = slot
				occupancy[slot]++
				continue
			}
			unassigned = append(unassigned, pending{c: c, pref: slot})
		}
	}
	for _, c := range applied {
		if slotIndex[c.PreferredTeeTime] == 0 {
			unassigned = append(unassigned, pending{c: c})
		}
	}

	// переполнение
	startOf := func(p pending) int { return max(p.pref, 1) }
	slices.SortStableFunc(unassigned, func(a, b pending) int {
		return cmp.Or(cmp.Compare(startOf(a), startOf(b)), byApplied(a.c, b.c))
	})
	for _, p := range unassigned {
		start := startOf(p)
		seat := 0
		for t := start; t <= nTeams && seat == 0; t++ {
			if occupancy[t] < TeamSize {
				seat = t
			}
		}
		for t := 1; t < start && seat == 0; t++ {
			if occupancy[t] < TeamSize {
				seat = t
			}
		}
		if seat == 0 {
			continue
		}
		team[p.c.ID] = seat
		occupancy[seat]++
	}

	ranked := slices.Clone(cands)
	slices.SortStableFunc(ranked, byRank)

	plan := Plan{Placements: make([]Placement, 0, len(ranked))}
	for _, c := range ranked {
		p := Placement{ID: c.ID}
		if t, ok := team[c.ID]; ok {
			p.Team, p.Seated = t, true
			if plan.Confirmed < maxMembers {
				p.Status = model.ReservationStatusConfirmed
				plan.Confirmed++
			} else {
				p.Status = model.ReservationStatusWaitlist
				plan.Waitlisted++
			}
		} else {
			p.Status = model.ReservationStatusWaitlist
			plan.Waitlisted++
			plan.Unseated++
		}
		if p.Team >= 1 && p.Team <= nTeams {
			p.TeeTime = teeTimes[p.Team-1]
		}
		plan.Placements = append(plan.Placements, p)
	}
	return plan
}

type AssignResult struct {
	ScheduleID    int64
	AssignedCount int
	Confirmed     int
	Waitlisted    int
	Unseated      int
	// Сколько записей реально изменилось.
	Updated int
}

func unchanged(r *model.Reservation, p Placement) bool {
	return r.Team() == p.Team &&
		r.AssignedTeeTime() == p.TeeTime &&
		r.Status == p.Status &&
		r.AssignmentWaitlist == (p.Status == model.ReservationStatusWaitlist) &&
		r.SwapPartnerID == nil &&
		r.SwapOriginalTeam == nil &&
		r.SwapOriginalTeeTime == nil
}

// AssignTeams распределяет заявки расписания по командам и сохраняет результат.
// Повторный запуск на неизменном наборе заявок ничего не меняет.
func (m *Manager) AssignTeams(ctx context.Context, scheduleID int64) (_ *AssignResult, err error) {
	ctx, span := m.start(ctx, "AssignTeams", attribute.Int64("schedule.id", scheduleID))
	defer func() { finish(span, err) }()

	unlock := m.locks.Lock(scheduleID)
	defer unlock()

	if _, err := m.refresh(ctx, scheduleID, ErrInvalidSchedule); err != nil {
		return nil, err
	}
	sched, err := m.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, classify("load schedule", err, ErrInvalidSchedule)
	}

	list, err := m.reservations.ForAssignment(ctx, scheduleID)
	if err != nil {
		return nil, &StorageError{Op: "load reservations", Err: err}
	}

	cands := make([]Candidate, 0, len(list))
	current := make(map[int64]*model.Reservation, len(list))
	for i := range list {
		r := &list[i]
		current[r.ID] = r
		cands = append(cands, Candidate{
			ID:               r.ID,
			Priority:         r.Priority,
			AppliedAt:        r.AppliedAt,
			PreferredTeeTime: r.PreferredTeeTime,
		})
	}

	plan := BuildPlan(cands, teeTimesOf(sched), sched.Capacity(sched.Venue))

	result := &AssignResult{
		ScheduleID:    scheduleID,
		AssignedCount: len(plan.Placements),
		Confirmed:     plan.Confirmed,
		Waitlisted:    plan.Waitlisted,
		Unseated:      plan.Unseated,
	}
	for _, p := range plan.Placements {
		if unchanged(current[p.ID], p) {
			continue
		}
		if err := m.reservations.SaveAssignment(ctx, p.ID, p.Team, p.TeeTime, p.Status); err != nil {
			m.publish(ctx, scheduleID)
			return nil, &StorageError{Op: "save assignment", Err: err, Committed: result.Updated}
		}
		result.Updated++
	}

	if plan.Unseated > 0 {
		m.log.Warn("reservations left without a team seat",
			zap.Int64("schedule_id", scheduleID),
			zap.Int("unseated", plan.Unseated),
		)
	}
	m.log.Info("teams assigned",
		zap.Int64("schedule_id", scheduleID),
		zap.Int("confirmed", plan.Confirmed),
		zap.Int("waitlisted", plan.Waitlisted),
		zap.Int("updated", result.Updated),
	)
	m.record(ctx, model.EventTypeTeamsAssigned, nil, scheduleID, nil,
		fmt.Sprintf("confirmed=%d waitlisted=%d unseated=%d", plan.Confirmed, plan.Waitlisted, plan.Unseated))
	m.publish(ctx, scheduleID)
	return result, nil
}
