package clubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "club.v1.ClubService"

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

type ClubServiceServer interface {
	Apply(context.Context, *ApplyRequest) (*ApplyResponse, error)
	Cancel(context.Context, *CancelRequest) (*ReleaseResponse, error)
	AdminSetStatus(context.Context, *SetStatusRequest) (*ReservationResponse, error)
	AdminDelete(context.Context, *ReservationRef) (*ReleaseResponse, error)
	AdminHardDelete(context.Context, *ReservationRef) (*Empty, error)
	AdminBookFor(context.Context, *BookForRequest) (*ReservationResponse, error)
	AssignTeams(context.Context, *ScheduleRef) (*AssignResponse, error)
	SwapTeams(context.Context, *SwapRequest) (*PairResponse, error)
	RevertSwap(context.Context, *ReservationRef) (*PairResponse, error)
	ListMyReservations(context.Context, *MemberRef) (*ReservationList, error)
	GetRoster(context.Context, *ScheduleRef) (*RosterResponse, error)
}

// UnimplementedClubServiceServer встраивается в реализацию, чтобы новые
// методы контракта не ломали сборку.
type UnimplementedClubServiceServer struct{}

func unimplemented(name string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
}

func (UnimplementedClubServiceServer) Apply(context.Context, *ApplyRequest) (*ApplyResponse, error) {
	return nil, unimplemented("Apply")
}
func (UnimplementedClubServiceServer) Cancel(context.Context, *CancelRequest) (*ReleaseResponse, error) {
	return nil, unimplemented("Cancel")
}
func (UnimplementedClubServiceServer) AdminSetStatus(context.Context, *SetStatusRequest) (*ReservationResponse, error) {
	return nil, unimplemented("AdminSetStatus")
}
func (UnimplementedClubServiceServer) AdminDelete(context.Context, *ReservationRef) (*ReleaseResponse, error) {
	return nil, unimplemented("AdminDelete")
}
func (UnimplementedClubServiceServer) AdminHardDelete(context.Context, *ReservationRef) (*Empty, error) {
	return nil, unimplemented("AdminHardDelete")
}
func (UnimplementedClubServiceServer) AdminBookFor(context.Context, *BookForRequest) (*ReservationResponse, error) {
	return nil, unimplemented("AdminBookFor")
}
func (UnimplementedClubServiceServer) AssignTeams(context.Context, *ScheduleRef) (*AssignResponse, error) {
	return nil, unimplemented("AssignTeams")
}
func (UnimplementedClubServiceServer) SwapTeams(context.Context, *SwapRequest) (*PairResponse, error) {
	return nil, unimplemented("SwapTeams")
}
func (UnimplementedClubServiceServer) RevertSwap(context.Context, *ReservationRef) (*PairResponse, error) {
	return nil, unimplemented("RevertSwap")
}
func (UnimplementedClubServiceServer) ListMyReservations(context.Context, *MemberRef) (*ReservationList, error) {
	return nil, unimplemented("ListMyReservations")
}
func (UnimplementedClubServiceServer) GetRoster(context.Context, *ScheduleRef) (*RosterResponse, error) {
	return nil, unimplemented("GetRoster")
}

// unary строит обработчик метода так же, как это делает protoc-gen-go-grpc.
func unary[Req, Resp any](name string, call func(ClubServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ClubServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ClubServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ClubService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClubServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Apply", ClubServiceServer.Apply),
		unary("Cancel", ClubServiceServer.Cancel),
		unary("AdminSetStatus", ClubServiceServer.AdminSetStatus),
		unary("AdminDelete", ClubServiceServer.AdminDelete),
		unary("AdminHardDelete", ClubServiceServer.AdminHardDelete),
		unary("AdminBookFor", ClubServiceServer.AdminBookFor),
		unary("AssignTeams", ClubServiceServer.AssignTeams),
		unary("SwapTeams", ClubServiceServer.SwapTeams),
		unary("RevertSwap", ClubServiceServer.RevertSwap),
		unary("ListMyReservations", ClubServiceServer.ListMyReservations),
		unary("GetRoster", ClubServiceServer.GetRoster),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "club/v1/club.json",
}

func RegisterClubServiceServer(s grpc.ServiceRegistrar, srv ClubServiceServer) {
	s.RegisterService(&ClubService_ServiceDesc, srv)
}

type ClubServiceClient interface {
	Apply(ctx context.Context, in *ApplyRequest, opts ...grpc.CallOption) (*ApplyResponse, error)
	Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*ReleaseResponse, error)
	AdminSetStatus(ctx context.Context, in *SetStatusRequest, opts ...grpc.CallOption) (*ReservationResponse, error)
	AdminDelete(ctx context.Context, in *ReservationRef, opts ...grpc.CallOption) (*ReleaseResponse, error)
	AdminHardDelete(ctx context.Context, in *ReservationRef, opts ...grpc.CallOption) (*Empty, error)
	AdminBookFor(ctx context.Context, in *BookForRequest, opts ...grpc.CallOption) (*ReservationResponse, error)
	AssignTeams(ctx context.Context, in *ScheduleRef, opts ...grpc.CallOption) (*AssignResponse, error)
	SwapTeams(ctx context.Context, in *SwapRequest, opts ...grpc.CallOption) (*PairResponse, error)
	RevertSwap(ctx context.Context, in *ReservationRef, opts ...grpc.CallOption) (*PairResponse, error)
	ListMyReservations(ctx context.Context, in *MemberRef, opts ...grpc.CallOption) (*ReservationList, error)
	GetRoster(ctx context.Context, in *ScheduleRef, opts ...grpc.CallOption) (*RosterResponse, error)
}

type clubServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewClubServiceClient(cc grpc.ClientConnInterface) ClubServiceClient {
	return &clubServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clubServiceClient) Apply(ctx context.Context, in *ApplyRequest, opts ...grpc.CallOption) (*ApplyResponse, error) {
	return invoke[ApplyResponse](ctx, c.cc, "Apply", in, opts)
}
func (c *clubServiceClient) Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*ReleaseResponse, error) {
	return invoke[ReleaseResponse](ctx, c.cc, "Cancel", in, opts)
}
func (c *clubServiceClient) AdminSetStatus(ctx context.Context, in *SetStatusRequest, opts ...grpc.CallOption) (*ReservationResponse, error) {
	return invoke[ReservationResponse](ctx, c.cc, "AdminSetStatus", in, opts)
}
func (c *clubServiceClient) AdminDelete(ctx context.Context, in *ReservationRef, opts ...grpc.CallOption) (*ReleaseResponse, error) {
	return invoke[ReleaseResponse](ctx, c.cc, "AdminDelete", in, opts)
}
func (c *clubServiceClient) AdminHardDelete(ctx context.Context, in *ReservationRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "AdminHardDelete", in, opts)
}
func (c *clubServiceClient) AdminBookFor(ctx context.Context, in *BookForRequest, opts ...grpc.CallOption) (*ReservationResponse, error) {
	return invoke[ReservationResponse](ctx, c.cc, "AdminBookFor", in, opts)
}
func (c *clubServiceClient) AssignTeams(ctx context.Context, in *ScheduleRef, opts ...grpc.CallOption) (*AssignResponse, error) {
	return invoke[AssignResponse](ctx, c.cc, "AssignTeams", in, opts)
}
func (c *clubServiceClient) SwapTeams(ctx context.Context, in *SwapRequest, opts ...grpc.CallOption) (*PairResponse, error) {
	return invoke[PairResponse](ctx, c.cc, "SwapTeams", in, opts)
}
func (c *clubServiceClient) RevertSwap(ctx context.Context, in *ReservationRef, opts ...grpc.CallOption) (*PairResponse, error) {
	return invoke[PairResponse](ctx, c.cc, "RevertSwap", in, opts)
}
func (c *clubServiceClient) ListMyReservations(ctx context.Context, in *MemberRef, opts ...grpc.CallOption) (*ReservationList, error) {
	return invoke[ReservationList](ctx, c.cc, "ListMyReservations", in, opts)
}
func (c *clubServiceClient) GetRoster(ctx context.Context, in *ScheduleRef, opts ...grpc.CallOption) (*RosterResponse, error) {
	return invoke[RosterResponse](ctx, c.cc, "GetRoster", in, opts)
}
