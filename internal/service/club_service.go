package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	clubv1 "github.com/Leganyst/golf-club/internal/api/club/v1"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/reservation"
)

// ClubService — gRPC-обёртка над менеджером заявок.
type ClubService struct {
	clubv1.UnimplementedClubServiceServer

	mgr *reservation.Manager
	log *zap.Logger
}

func NewClubService(mgr *reservation.Manager, log *zap.Logger) *ClubService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClubService{mgr: mgr, log: log}
}

// grpcCode сопоставляет доменные ошибки с кодами gRPC.
func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, reservation.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, reservation.ErrDuplicateReservation):
		return codes.AlreadyExists
	case errors.Is(err, reservation.ErrCompletedSchedule),
		errors.Is(err, reservation.ErrAlreadyCancelled),
		errors.Is(err, reservation.ErrNoSwapHistory):
		return codes.FailedPrecondition
	case errors.Is(err, reservation.ErrInvalidSchedule),
		errors.Is(err, reservation.ErrInvalidTeeTime),
		errors.Is(err, reservation.ErrInvalidStatus),
		errors.Is(err, reservation.ErrInvalidSwap),
		errors.Is(err, reservation.ErrTeamMismatch):
		return codes.InvalidArgument
	case reservation.IsStorage(err):
		return codes.Unavailable
	}
	return codes.Internal
}

func (s *ClubService) fail(op string, err error) error {
	code := grpcCode(err)
	if code == codes.Internal || code == codes.Unavailable {
		s.log.Error(op+" failed", zap.Error(err))
	}
	return status.Error(code, err.Error())
}

func mapReservation(r *model.Reservation) *clubv1.Reservation {
	if r == nil {
		return nil
	}
	out := &clubv1.Reservation{
		Id:               r.ID,
		ScheduleId:       r.ScheduleID,
		MemberId:         r.MemberID,
		Status:           string(r.Status),
		Priority:         int32(r.Priority),
		PreferredTeeTime: r.PreferredTeeTime,
		TeamNumber:       int32(r.Team()),
		TeeTime:          r.AssignedTeeTime(),
		AppliedAt:        r.AppliedAt,
	}
	if r.SwapPartnerID != nil {
		out.SwapPartnerId = *r.SwapPartnerID
	}
	if r.Member != nil {
		out.MemberName = r.Member.Name
	}
	if r.Schedule != nil {
		out.PlayDate = r.Schedule.Date().Format(time.DateOnly)
		if r.Schedule.Venue != nil {
			out.VenueName = r.Schedule.Venue.Name
		}
	}
	return out
}

func mapSchedule(sc *model.Schedule) *clubv1.Schedule {
	out := &clubv1.Schedule{
		Id:         sc.ID,
		VenueId:    sc.VenueID,
		PlayDate:   sc.Date().Format(time.DateOnly),
		TeeTimes:   sc.TeeTimeList(),
		MaxMembers: int32(sc.Capacity(sc.Venue)),
		Status:     string(sc.Status),
	}
	if sc.Venue != nil {
		out.VenueName = sc.Venue.Name
	}
	return out
}

func mapReservations(list []model.Reservation) []*clubv1.Reservation {
	out := make([]*clubv1.Reservation, 0, len(list))
	for i := range list {
		out = append(out, mapReservation(&list[i]))
	}
	return out
}

func mapRelease(r *reservation.ReleaseResult) *clubv1.ReleaseResponse {
	resp := &clubv1.ReleaseResponse{Reservation: mapReservation(r.Reservation)}
	if r.PromotedMemberID != nil {
		resp.PromotedMemberId = *r.PromotedMemberID
	}
	return resp
}

func (s *ClubService) Apply(ctx context.Context, req *clubv1.ApplyRequest) (*clubv1.ApplyResponse, error) {
	if req.MemberId <= 0 || req.ScheduleId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "member_id and schedule_id are required")
	}
	res, err := s.mgr.Apply(ctx, req.MemberId, req.ScheduleId, req.PreferredTeeTime)
	if err != nil {
		return nil, s.fail("apply", err)
	}
	return &clubv1.ApplyResponse{Reservation: mapReservation(res.Reservation), Position: int32(res.Position)}, nil
}

func (s *ClubService) Cancel(ctx context.Context, req *clubv1.CancelRequest) (*clubv1.ReleaseResponse, error) {
	if req.MemberId <= 0 || req.ReservationId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "member_id and reservation_id are required")
	}
	res, err := s.mgr.Cancel(ctx, req.MemberId, req.ReservationId)
	if err != nil {
		return nil, s.fail("cancel", err)
	}
	return mapRelease(res), nil
}

func (s *ClubService) AdminSetStatus(ctx context.Context, req *clubv1.SetStatusRequest) (*clubv1.ReservationResponse, error) {
	if req.ReservationId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reservation_id is required")
	}
	res, err := s.mgr.AdminSetStatus(ctx, req.ReservationId, req.Status)
	if err != nil {
		return nil, s.fail("set status", err)
	}
	return &clubv1.ReservationResponse{Reservation: mapReservation(res)}, nil
}

func (s *ClubService) AdminDelete(ctx context.Context, req *clubv1.ReservationRef) (*clubv1.ReleaseResponse, error) {
	if req.ReservationId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reservation_id is required")
	}
	res, err := s.mgr.AdminDelete(ctx, req.ReservationId)
	if err != nil {
		return nil, s.fail("admin delete", err)
	}
	return mapRelease(res), nil
}

func (s *ClubService) AdminHardDelete(ctx context.Context, req *clubv1.ReservationRef) (*clubv1.Empty, error) {
	if req.ReservationId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reservation_id is required")
	}
	if err := s.mgr.AdminHardDelete(ctx, req.ReservationId); err != nil {
		return nil, s.fail("hard delete", err)
	}
	return &clubv1.Empty{}, nil
}

func (s *ClubService) AdminBookFor(ctx context.Context, req *clubv1.BookForRequest) (*clubv1.ReservationResponse, error) {
	if req.MemberId <= 0 || req.ScheduleId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "member_id and schedule_id are required")
	}
	res, err := s.mgr.AdminBookFor(ctx, req.ScheduleId, req.MemberId)
	if err != nil {
		return nil, s.fail("book for", err)
	}
	return &clubv1.ReservationResponse{Reservation: mapReservation(res)}, nil
}

func (s *ClubService) AssignTeams(ctx context.Context, req *clubv1.ScheduleRef) (*clubv1.AssignResponse, error) {
	if req.ScheduleId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "schedule_id is required")
	}
	res, err := s.mgr.AssignTeams(ctx, req.ScheduleId)
	if err != nil {
		return nil, s.fail("assign teams", err)
	}
	return &clubv1.AssignResponse{
		ScheduleId:    res.ScheduleID,
		AssignedCount: int32(res.AssignedCount),
		Confirmed:     int32(res.Confirmed),
		Waitlisted:    int32(res.Waitlisted),
		Unseated:      int32(res.Unseated),
		Updated:       int32(res.Updated),
	}, nil
}

func (s *ClubService) SwapTeams(ctx context.Context, req *clubv1.SwapRequest) (*clubv1.PairResponse, error) {
	if req.ReservationA <= 0 || req.ReservationB <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reservation_a and reservation_b are required")
	}
	pair, err := s.mgr.SwapTeams(ctx, req.ReservationA, req.ReservationB, int(req.ExpectedTeam))
	if err != nil {
		return nil, s.fail("swap teams", err)
	}
	return &clubv1.PairResponse{Reservations: []*clubv1.Reservation{mapReservation(pair[0]), mapReservation(pair[1])}}, nil
}

func (s *ClubService) RevertSwap(ctx context.Context, req *clubv1.ReservationRef) (*clubv1.PairResponse, error) {
	if req.ReservationId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reservation_id is required")
	}
	pair, err := s.mgr.RevertSwap(ctx, req.ReservationId)
	if err != nil {
		return nil, s.fail("revert swap", err)
	}
	return &clubv1.PairResponse{Reservations: []*clubv1.Reservation{mapReservation(pair[0]), mapReservation(pair[1])}}, nil
}

func (s *ClubService) ListMyReservations(ctx context.Context, req *clubv1.MemberRef) (*clubv1.ReservationList, error) {
	if req.MemberId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "member_id is required")
	}
	list, err := s.mgr.MyReservations(ctx, req.MemberId)
	if err != nil {
		return nil, s.fail("list reservations", err)
	}
	return &clubv1.ReservationList{Reservations: mapReservations(list)}, nil
}

func (s *ClubService) GetRoster(ctx context.Context, req *clubv1.ScheduleRef) (*clubv1.RosterResponse, error) {
	if req.ScheduleId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "schedule_id is required")
	}
	sched, list, err := s.mgr.ScheduleRoster(ctx, req.ScheduleId)
	if err != nil {
		return nil, s.fail("roster", err)
	}
	return &clubv1.RosterResponse{Schedule: mapSchedule(sched), Reservations: mapReservations(list)}, nil
}
