package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/model"
)

var errClosed = errors.New("closed")

func TestAdmit_InsertsAndRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	m := seedMembers(t, gdb, 1)[0]
	repo := NewGormReservationRepository(gdb)

	decide := func(_ *model.Schedule, active int64) (*model.Reservation, error) {
		return &model.Reservation{Status: model.ReservationStatusPending, AppliedAt: time.Now().UTC()}, nil
	}

	res, before, err := repo.Admit(ctx, s.ID, m.ID, decide)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before)
	assert.Equal(t, s.ID, res.ScheduleID)
	assert.Equal(t, m.ID, res.MemberID)

	_, _, err = repo.Admit(ctx, s.ID, m.ID, decide)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAdmit_DecideErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	m := seedMembers(t, gdb, 1)[0]
	repo := NewGormReservationRepository(gdb)

	_, _, err := repo.Admit(ctx, s.ID, m.ID, func(*model.Schedule, int64) (*model.Reservation, error) {
		return nil, errClosed
	})
	assert.ErrorIs(t, err, errClosed)

	list, err := repo.ListBySchedule(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdmit_UnknownSchedule(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewGormReservationRepository(gdb)

	_, _, err := repo.Admit(context.Background(), 999, 1, func(*model.Schedule, int64) (*model.Reservation, error) {
		return &model.Reservation{}, nil
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPartialUniqueIndex_AllowsReapplyAfterCancel(t *testing.T) {
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	m := seedMembers(t, gdb, 1)[0]
	now := time.Now().UTC()

	seedReservation(t, gdb, s.ID, m.ID, model.ReservationStatusCancelled, now)
	seedReservation(t, gdb, s.ID, m.ID, model.ReservationStatusPending, now)

	err := gdb.Create(&model.Reservation{ScheduleID: s.ID, MemberID: m.ID, Status: model.ReservationStatusWaitlist, AppliedAt: now}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRelease_PromotesEarliestWaitlist(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 2)
	ms := seedMembers(t, gdb, 4)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	repo := NewGormReservationRepository(gdb)

	held := seedReservation(t, gdb, s.ID, ms[0].ID, model.ReservationStatusConfirmed, base)
	seedReservation(t, gdb, s.ID, ms[1].ID, model.ReservationStatusPending, base.Add(time.Minute))
	late := seedReservation(t, gdb, s.ID, ms[2].ID, model.ReservationStatusWaitlist, base.Add(3*time.Minute))
	early := seedReservation(t, gdb, s.ID, ms[3].ID, model.ReservationStatusWaitlist, base.Add(2*time.Minute))

	out, err := repo.Release(ctx, held.ID, model.ReservationStatusCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, out.Previous)
	assert.Equal(t, model.ReservationStatusCancelled, out.Reservation.Status)
	require.NotNil(t, out.Promoted)
	assert.Equal(t, early.ID, out.Promoted.ID)

	got, err := repo.GetByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusWaitlist, got.Status)
}

func TestRelease_WaitlistDoesNotPromote(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 1)
	ms := seedMembers(t, gdb, 3)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	repo := NewGormReservationRepository(gdb)

	seedReservation(t, gdb, s.ID, ms[0].ID, model.ReservationStatusPending, base)
	w1 := seedReservation(t, gdb, s.ID, ms[1].ID, model.ReservationStatusWaitlist, base.Add(time.Minute))
	seedReservation(t, gdb, s.ID, ms[2].ID, model.ReservationStatusWaitlist, base.Add(2*time.Minute))

	out, err := repo.Release(ctx, w1.ID, model.ReservationStatusDeleted, nil)
	require.NoError(t, err)
	assert.Nil(t, out.Promoted)
}

func TestRelease_GuardAborts(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	m := seedMembers(t, gdb, 1)[0]
	res := seedReservation(t, gdb, s.ID, m.ID, model.ReservationStatusPending, time.Now().UTC())
	repo := NewGormReservationRepository(gdb)

	_, err := repo.Release(ctx, res.ID, model.ReservationStatusCancelled, func(*model.Reservation, *model.Schedule) error {
		return errClosed
	})
	assert.ErrorIs(t, err, errClosed)

	got, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusPending, got.Status)
}

func TestSwapAndRevert(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	ms := seedMembers(t, gdb, 2)
	now := time.Now().UTC()
	repo := NewGormReservationRepository(gdb)

	a := seedReservation(t, gdb, s.ID, ms[0].ID, model.ReservationStatusConfirmed, now)
	b := seedReservation(t, gdb, s.ID, ms[1].ID, model.ReservationStatusConfirmed, now)
	require.NoError(t, repo.SaveAssignment(ctx, a.ID, 1, "06:00", model.ReservationStatusConfirmed))
	require.NoError(t, repo.SaveAssignment(ctx, b.ID, 3, "06:16", model.ReservationStatusConfirmed))

	sa, sb, err := repo.Swap(ctx, a.ID, b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sa.Team())
	assert.Equal(t, "06:16", sa.AssignedTeeTime())
	assert.Equal(t, 1, sb.Team())

	stored, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, stored.HasSwapHistory())
	assert.Equal(t, b.ID, *stored.SwapPartnerID)
	assert.Equal(t, 1, *stored.SwapOriginalTeam)

	ra, rb, err := repo.RevertSwap(ctx, b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, ra.Team())
	assert.Equal(t, 1, rb.Team())

	for id, want := range map[int64]struct {
		team int
		tee  string
	}{a.ID: {1, "06:00"}, b.ID: {3, "06:16"}} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want.team, got.Team())
		assert.Equal(t, want.tee, got.AssignedTeeTime())
		assert.False(t, got.HasSwapHistory())
	}
}

func TestForAssignment_IncludesParkedWaitlist(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	ms := seedMembers(t, gdb, 4)
	now := time.Now().UTC()
	repo := NewGormReservationRepository(gdb)

	p := seedReservation(t, gdb, s.ID, ms[0].ID, model.ReservationStatusPending, now)
	parked := seedReservation(t, gdb, s.ID, ms[1].ID, model.ReservationStatusWaitlist, now)
	require.NoError(t, repo.SaveAssignment(ctx, parked.ID, 2, "06:08", model.ReservationStatusWaitlist))
	manual := seedReservation(t, gdb, s.ID, ms[2].ID, model.ReservationStatusWaitlist, now)
	require.NoError(t, repo.SaveAssignment(ctx, manual.ID, 3, "06:16", model.ReservationStatusConfirmed))
	got, _, err := repo.SetStatus(ctx, manual.ID, model.ReservationStatusWaitlist)
	require.NoError(t, err)
	assert.Nil(t, got.TeamNumber)
	seedReservation(t, gdb, s.ID, ms[3].ID, model.ReservationStatusCancelled, now)

	list, err := repo.ForAssignment(ctx, s.ID)
	require.NoError(t, err)
	ids := []int64{}
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []int64{p.ID, parked.ID}, ids)

	var stored model.Reservation
	require.NoError(t, gdb.First(&stored, manual.ID).Error)
	assert.Nil(t, stored.TeamNumber)
	assert.Nil(t, stored.TeeTime)
	assert.False(t, stored.AssignmentWaitlist)
}

func TestSaveAssignment_WithoutTeam(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	ms := seedMembers(t, gdb, 1)
	repo := NewGormReservationRepository(gdb)

	res := seedReservation(t, gdb, s.ID, ms[0].ID, model.ReservationStatusPending, time.Now().UTC())
	require.NoError(t, repo.SaveAssignment(ctx, res.ID, 2, "06:08", model.ReservationStatusConfirmed))
	require.NoError(t, repo.SaveAssignment(ctx, res.ID, 0, "", model.ReservationStatusWaitlist))

	var stored model.Reservation
	require.NoError(t, gdb.First(&stored, res.ID).Error)
	assert.Nil(t, stored.TeamNumber)
	assert.Nil(t, stored.TeeTime)
	assert.True(t, stored.AssignmentWaitlist)
}

func TestSetStatusAndHardDelete(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	v := seedVenue(t, gdb)
	s := seedSchedule(t, gdb, v.ID, day(2026, 5, 9), 12)
	m := seedMembers(t, gdb, 1)[0]
	res := seedReservation(t, gdb, s.ID, m.ID, model.ReservationStatusWaitlist, time.Now().UTC())
	repo := NewGormReservationRepository(gdb)

	got, prev, err := repo.SetStatus(ctx, res.ID, model.ReservationStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusWaitlist, prev)
	assert.Equal(t, model.ReservationStatusConfirmed, got.Status)

	_, err = repo.HardDelete(ctx, res.ID)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, res.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, _, err = repo.SetStatus(ctx, res.ID, model.ReservationStatusPending)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
