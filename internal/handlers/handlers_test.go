package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/auth"
	"github.com/Leganyst/golf-club/internal/cache"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/notify"
	"github.com/Leganyst/golf-club/internal/repository"
	"github.com/Leganyst/golf-club/internal/reservation"
	"github.com/Leganyst/golf-club/internal/schedule"
	"github.com/Leganyst/golf-club/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

type httpEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	dispatch *notify.Dispatcher
	venue    *model.Venue
	schedule *model.Schedule
	admin    string
	tokens   []string
	members  []model.Member
}

func newHTTPEnv(t *testing.T) *httpEnv {
	t.Helper()
	gdb := testutil.NewDB(t)

	v := &model.Venue{Name: "Lakeside", MaxMembers: 12, ScheduleWeek: 2, IsActive: true}
	require.NoError(t, gdb.Create(v).Error)
	s := &model.Schedule{
		VenueID:    v.ID,
		PlayDate:   datatypes.Date(time.Now().UTC().AddDate(0, 0, 14)),
		TeeTimes:   "06:00,06:08,06:16",
		MaxMembers: 12,
		Status:     model.ScheduleStatusOpen,
	}
	require.NoError(t, gdb.Create(s).Error)

	adm := &model.Member{Name: "admin", IsAdmin: true, Status: model.MemberStatusActive}
	require.NoError(t, gdb.Create(adm).Error)
	members := make([]model.Member, 3)
	for i := range members {
		members[i] = model.Member{Name: fmt.Sprintf("player-%d", i+1), Status: model.MemberStatusActive}
		require.NoError(t, gdb.Create(&members[i]).Error)
	}

	venues := repository.NewGormVenueRepository(gdb)
	schedules := repository.NewGormScheduleRepository(gdb)
	reservations := repository.NewGormReservationRepository(gdb)
	memberRepo := repository.NewGormMemberRepository(gdb)
	events := repository.NewGormEventRepository(gdb)
	roster := cache.NewRoster(cache.NewMemoryKVStore(), schedules, reservations, time.Minute, nil)

	inbox := notify.NewInApp(repository.NewGormNotificationRepository(gdb))
	dispatch := notify.NewDispatcher(inbox, memberRepo, time.Second, nil)
	t.Cleanup(dispatch.Wait)

	mgr := reservation.NewManager(reservation.Deps{
		Schedules:    schedules,
		Reservations: reservations,
		Members:      memberRepo,
		Events:       events,
		Roster:       roster,
		Notifier:     dispatch,
	})
	svc := schedule.NewService(venues, schedules, events, roster, dispatch, nil)

	iss := auth.NewIssuer("test-secret", time.Hour)
	adminTok, err := iss.CreateAccessToken(adm)
	require.NoError(t, err)
	tokens := make([]string, len(members))
	for i := range members {
		tokens[i], err = iss.CreateAccessToken(&members[i])
		require.NoError(t, err)
	}

	return &httpEnv{
		db:       gdb,
		router:   NewRouter(New(mgr, svc, inbox, time.UTC, nil), iss, nil),
		dispatch: dispatch,
		venue:    v,
		schedule: s,
		admin:    adminTok,
		tokens:   tokens,
		members:  members,
	}
}

func (e *httpEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type applyBody struct {
	Reservation model.Reservation `json:"reservation"`
	Status      string            `json:"status"`
	Position    int               `json:"position"`
}

func TestApplyCancelOverHTTP(t *testing.T) {
	e := newHTTPEnv(t)
	applyPath := fmt.Sprintf("/v1/schedules/%d/reservations", e.schedule.ID)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, applyPath, "", nil).Code)

	w := e.do(t, http.MethodPost, applyPath, e.tokens[0], gin.H{"preferred_tee_time": "06:08"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	applied := decode[applyBody](t, w)
	assert.Equal(t, "pending", applied.Status)
	assert.Equal(t, 1, applied.Position)
	assert.Equal(t, "06:08", applied.Reservation.PreferredTeeTime)

	w = e.do(t, http.MethodPost, applyPath, e.tokens[0], nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_RESERVATION", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodPost, applyPath, e.tokens[1], gin.H{"preferred_tee_time": "09:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TEE_TIME", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodPost, "/v1/schedules/999/reservations", e.tokens[1], nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SCHEDULE", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodPost, applyPath, e.admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	cancelPath := fmt.Sprintf("/v1/reservations/%d", applied.Reservation.ID)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, cancelPath, e.tokens[1], nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/v1/reservations/999", e.tokens[0], nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodDelete, "/v1/reservations/abc", e.tokens[0], nil).Code)

	w = e.do(t, http.MethodDelete, cancelPath, e.tokens[0], nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rel := decode[releaseResponse](t, w)
	assert.Equal(t, model.ReservationStatusCancelled, rel.Reservation.Status)
	assert.Nil(t, rel.PromotedMemberID)

	w = e.do(t, http.MethodDelete, cancelPath, e.tokens[0], nil)
	assert.Equal(t, "ALREADY_CANCELLED", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodGet, "/v1/me/reservations", e.tokens[0], nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[struct {
		Items []model.Reservation `json:"items"`
	}](t, w)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, applied.Reservation.ID, mine.Items[0].ID)
}

func TestListSchedulesShowsCountsAndMyReservation(t *testing.T) {
	e := newHTTPEnv(t)
	applyPath := fmt.Sprintf("/v1/schedules/%d/reservations", e.schedule.ID)
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, applyPath, e.tokens[0], nil).Code)
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, applyPath, e.tokens[1], nil).Code)

	w := e.do(t, http.MethodGet, "/v1/schedules", e.tokens[0], nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[struct {
		Items []schedule.Summary `json:"items"`
		Total int                `json:"total"`
	}](t, w)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, 2, page.Items[0].Reserved)
	require.NotNil(t, page.Items[0].ReservationID)
	assert.Equal(t, model.ReservationStatusPending, page.Items[0].MyStatus)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/v1/schedules?from=tomorrow", e.tokens[0], nil).Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := newHTTPEnv(t)
	path := fmt.Sprintf("/v1/admin/schedules/%d/assign", e.schedule.ID)
	w := e.do(t, http.MethodPost, path, e.tokens[0], nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode[errorBody](t, w).Code)
}

func TestAdminScheduleLifecycle(t *testing.T) {
	e := newHTTPEnv(t)

	w := e.do(t, http.MethodPost, "/v1/admin/schedules", e.admin, gin.H{
		"venue_id": e.venue.ID, "play_date": "2031-06-14", "max_members": 8,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Schedule](t, w)
	assert.Equal(t, "06:00,06:08,06:16", created.TeeTimes)
	assert.Equal(t, 8, created.MaxMembers)

	w = e.do(t, http.MethodPost, "/v1/admin/schedules", e.admin, gin.H{"venue_id": e.venue.ID, "play_date": "2031-06-14"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SCHEDULE_EXISTS", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodPost, "/v1/admin/schedules", e.admin, gin.H{"venue_id": e.venue.ID, "play_date": "14.06.2031"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/v1/admin/schedules/%d", created.ID), e.admin, gin.H{"tee_times": []string{"7:00", "07:10"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "07:00,07:10", decode[model.Schedule](t, w).TeeTimes)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/schedules/%d/reservations", created.ID), e.admin, gin.H{"member_id": e.members[0].ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode[model.Reservation](t, w)
	assert.Equal(t, model.ReservationStatusConfirmed, booked.Status)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/schedules/%d", created.ID), e.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SCHEDULE_HAS_RESERVATIONS", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/reservations/%d?hard=true", booked.ID), e.admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/schedules/%d", created.ID), e.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/schedules/%d", created.ID), e.admin, nil).Code)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/schedules/%d/complete", e.schedule.ID), e.admin, nil).Code)
	w = e.do(t, http.MethodPost, fmt.Sprintf("/v1/schedules/%d/reservations", e.schedule.ID), e.tokens[0], nil)
	assert.Equal(t, "INVALID_SCHEDULE", decode[errorBody](t, w).Code)
}

func TestGenerateYearOverHTTP(t *testing.T) {
	e := newHTTPEnv(t)
	w := e.do(t, http.MethodPost, "/v1/admin/schedules/generate", e.admin, gin.H{"year": 2031, "venue_ids": []int64{e.venue.ID}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[struct {
		Created int `json:"created"`
	}](t, w)
	assert.Equal(t, 12, out.Created)

	w = e.do(t, http.MethodPost, "/v1/admin/schedules/generate", e.admin, gin.H{"year": 2031, "venue_ids": []int64{e.venue.ID}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Zero(t, decode[struct {
		Created int `json:"created"`
	}](t, w).Created)

	w = e.do(t, http.MethodPost, "/v1/admin/schedules/generate", e.admin, gin.H{"year": 12})
	assert.Equal(t, "INVALID_INPUT", decode[errorBody](t, w).Code)
}

func TestAssignSwapRosterAndExport(t *testing.T) {
	e := newHTTPEnv(t)
	applyPath := fmt.Sprintf("/v1/schedules/%d/reservations", e.schedule.ID)
	ids := make([]int64, 0, 3)
	for i, tee := range []string{"06:00", "06:08", "06:08"} {
		w := e.do(t, http.MethodPost, applyPath, e.tokens[i], gin.H{"preferred_tee_time": tee})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, decode[applyBody](t, w).Reservation.ID)
	}

	w := e.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/schedules/%d/assign", e.schedule.ID), e.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assigned := decode[struct {
		Confirmed int `json:"confirmed"`
		Unseated  int `json:"unseated"`
	}](t, w)
	assert.Equal(t, 3, assigned.Confirmed)
	assert.Zero(t, assigned.Unseated)

	w = e.do(t, http.MethodPost, "/v1/admin/reservations/swap", e.admin, gin.H{"reservation_id": ids[0], "partner_id": ids[1], "expected_team": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SWAP", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodPost, "/v1/admin/reservations/swap", e.admin, gin.H{"reservation_id": ids[0], "partner_id": ids[1], "expected_team": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pair := decode[struct {
		Items []model.Reservation `json:"items"`
	}](t, w)
	require.Len(t, pair.Items, 2)
	assert.Equal(t, 2, pair.Items[0].Team())
	assert.Equal(t, "06:08", pair.Items[0].AssignedTeeTime())
	assert.Equal(t, 1, pair.Items[1].Team())

	w = e.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/reservations/%d/revert-swap", ids[1]), e.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/reservations/%d/revert-swap", ids[1]), e.admin, nil)
	assert.Equal(t, "NO_SWAP_HISTORY", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/v1/admin/schedules/%d/roster", e.schedule.ID), e.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	roster := decode[struct {
		Items []model.Reservation `json:"items"`
	}](t, w)
	require.Len(t, roster.Items, 3)
	assert.Equal(t, 1, roster.Items[0].Team())

	w = e.do(t, http.MethodGet, fmt.Sprintf("/v1/admin/schedules/%d/teesheet.xlsx", e.schedule.ID), e.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Tee Sheet")
	require.NoError(t, err)
	assert.Len(t, rows, 2+3)
}

func TestSetStatusNotifiesInbox(t *testing.T) {
	e := newHTTPEnv(t)
	w := e.do(t, http.MethodPost, fmt.Sprintf("/v1/schedules/%d/reservations", e.schedule.ID), e.tokens[0], nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[applyBody](t, w).Reservation.ID

	path := fmt.Sprintf("/v1/admin/reservations/%d/status", id)
	w = e.do(t, http.MethodPut, path, e.admin, gin.H{"status": "bogus"})
	assert.Equal(t, "INVALID_STATUS", decode[errorBody](t, w).Code)

	w = e.do(t, http.MethodPut, path, e.admin, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.ReservationStatusConfirmed, decode[model.Reservation](t, w).Status)
	e.dispatch.Wait()

	w = e.do(t, http.MethodGet, "/v1/me/notifications", e.tokens[0], nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	inbox := decode[struct {
		Items []model.Notification `json:"items"`
	}](t, w)
	require.Len(t, inbox.Items, 1)
	assert.False(t, inbox.Items[0].IsRead)

	readPath := fmt.Sprintf("/v1/me/notifications/%d/read", inbox.Items[0].ID)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, readPath, e.tokens[1], nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, readPath, e.tokens[0], nil).Code)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/v1/me/notifications?days=90", e.tokens[0], nil).Code)
}

func TestAdminDeletePromotesWaitlist(t *testing.T) {
	e := newHTTPEnv(t)
	require.NoError(t, e.db.Model(&model.Schedule{}).Where("id = ?", e.schedule.ID).Update("max_members", 1).Error)
	applyPath := fmt.Sprintf("/v1/schedules/%d/reservations", e.schedule.ID)

	w := e.do(t, http.MethodPost, applyPath, e.tokens[0], nil)
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode[applyBody](t, w)
	w = e.do(t, http.MethodPost, applyPath, e.tokens[1], nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "waitlist", decode[applyBody](t, w).Status)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/reservations/%d", first.Reservation.ID), e.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rel := decode[releaseResponse](t, w)
	assert.Equal(t, model.ReservationStatusDeleted, rel.Reservation.Status)
	require.NotNil(t, rel.PromotedMemberID)
	assert.Equal(t, e.members[1].ID, *rel.PromotedMemberID)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{reservation.ErrNotFound, http.StatusNotFound},
		{schedule.ErrNotFound, http.StatusNotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{reservation.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("wrap: %w", reservation.ErrDuplicateReservation), http.StatusConflict},
		{reservation.ErrCompletedSchedule, http.StatusBadRequest},
		{reservation.ErrTeamMismatch, http.StatusBadRequest},
		{&reservation.StorageError{Op: "x", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, classify(tc.err).status, tc.err.Error())
	}
}
