package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Leganyst/golf-club/internal/config"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/testutil"
)

func testConfig() config.App {
	return config.App{
		JWTSecret:        "s3cret",
		JWTExpireMin:     60,
		RosterTTL:        time.Minute,
		NotifyTimeout:    time.Second,
		AlmostFullTarget: config.AlmostFullHolders,
		TimeZone:         "Asia/Seoul",
	}
}

func TestBuildWiresServices(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, testConfig(), testutil.NewDB(t), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "Asia/Seoul", a.Location.String())

	v := &model.Venue{Name: "Lakeside", MaxMembers: 12, ScheduleWeek: 2, IsActive: true}
	require.NoError(t, a.Venues.Create(ctx, v))
	m := &model.Member{Name: "player", Status: model.MemberStatusActive}
	require.NoError(t, a.Members.Create(ctx, m))

	s := &model.Schedule{
		VenueID:    v.ID,
		PlayDate:   datatypes.Date(time.Date(2031, 5, 10, 0, 0, 0, 0, time.UTC)),
		TeeTimes:   "06:00,06:08,06:16",
		MaxMembers: 12,
		Status:     model.ScheduleStatusOpen,
	}
	require.NoError(t, a.DB.Create(s).Error)

	res, err := a.Manager.Apply(ctx, m.ID, s.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusPending, res.Status)

	tok, err := a.Tokens.CreateAccessToken(m)
	require.NoError(t, err)
	claims, err := a.Tokens.ParseValidate(tok)
	require.NoError(t, err)
	id, err := claims.MemberID()
	require.NoError(t, err)
	assert.Equal(t, m.ID, id)
}

func TestBuildUsesRedisWhenConfigured(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	ctx := context.Background()
	a, err := Build(ctx, cfg, testutil.NewDB(t), nil)
	require.NoError(t, err)
	defer a.Close()

	v := &model.Venue{Name: "Hillside", MaxMembers: 12, ScheduleWeek: 1, IsActive: true}
	require.NoError(t, a.Venues.Create(ctx, v))
	s := &model.Schedule{
		VenueID:    v.ID,
		PlayDate:   datatypes.Date(time.Date(2031, 5, 3, 0, 0, 0, 0, time.UTC)),
		MaxMembers: 12,
		Status:     model.ScheduleStatusOpen,
	}
	require.NoError(t, a.DB.Create(s).Error)

	_, err = a.Roster.Refresh(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())
}

func TestBuildFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Build(ctx, cfg, testutil.NewDB(t), nil)
	require.Error(t, err)
}
