package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/testutil"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewDB(t)
}

func day(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func seedVenue(t *testing.T, gdb *gorm.DB) *model.Venue {
	t.Helper()
	v := &model.Venue{Name: "Lakeside", MaxMembers: 12, ScheduleWeek: 2, TeeTimeStart: "06:00", TeeIntervalMin: 8, TeeCount: 3, IsActive: true}
	require.NoError(t, gdb.Create(v).Error)
	return v
}

func seedSchedule(t *testing.T, gdb *gorm.DB, venueID int64, date datatypes.Date, capacity int) *model.Schedule {
	t.Helper()
	s := &model.Schedule{
		VenueID:    venueID,
		PlayDate:   date,
		TeeTimes:   "06:00,06:08,06:16",
		MaxMembers: capacity,
		Status:     model.ScheduleStatusOpen,
	}
	require.NoError(t, gdb.Create(s).Error)
	return s
}

func seedMembers(t *testing.T, gdb *gorm.DB, n int) []model.Member {
	t.Helper()
	out := make([]model.Member, n)
	for i := range out {
		out[i] = model.Member{Name: fmt.Sprintf("member-%d", i+1), Status: model.MemberStatusActive}
		require.NoError(t, gdb.Create(&out[i]).Error)
	}
	return out
}

func seedReservation(t *testing.T, gdb *gorm.DB, scheduleID, memberID int64, status model.ReservationStatus, appliedAt time.Time) *model.Reservation {
	t.Helper()
	r := &model.Reservation{ScheduleID: scheduleID, MemberID: memberID, Status: status, AppliedAt: appliedAt}
	require.NoError(t, gdb.Create(r).Error)
	return r
}
