package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "yaksok.v1.AppointmentsService"

const (
	methodGetTimeVote          = "/" + serviceName + "/GetTimeVote"
	methodListAppointmentCards = "/" + serviceName + "/ListAppointmentCards"
	methodDeleteAppointment    = "/" + serviceName + "/DeleteAppointment"
)

// AppointmentsServiceServer carries its payloads in protobuf well-known
// types, so no generated message code is needed on either side.
type AppointmentsServiceServer interface {
	GetTimeVote(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListAppointmentCards(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error)
	DeleteAppointment(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
}

func RegisterAppointmentsServiceServer(s grpc.ServiceRegistrar, srv AppointmentsServiceServer) {
	s.RegisterService(&appointmentsServiceDesc, srv)
}

var appointmentsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AppointmentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTimeVote", Handler: getTimeVoteHandler},
		{MethodName: "ListAppointmentCards", Handler: listAppointmentCardsHandler},
		{MethodName: "DeleteAppointment", Handler: deleteAppointmentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "yaksok/v1/appointments.proto",
}

func getTimeVoteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AppointmentsServiceServer).GetTimeVote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetTimeVote}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AppointmentsServiceServer).GetTimeVote(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func listAppointmentCardsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AppointmentsServiceServer).ListAppointmentCards(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListAppointmentCards}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AppointmentsServiceServer).ListAppointmentCards(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteAppointmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AppointmentsServiceServer).DeleteAppointment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDeleteAppointment}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AppointmentsServiceServer).DeleteAppointment(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// AppointmentsClient calls the service over an existing connection.
type AppointmentsClient struct {
	cc grpc.ClientConnInterface
}

func NewAppointmentsClient(cc grpc.ClientConnInterface) *AppointmentsClient {
	return &AppointmentsClient{cc: cc}
}

func (c *AppointmentsClient) GetTimeVote(ctx context.Context, appointmentID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetTimeVote, wrapperspb.Int64(appointmentID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) ListAppointmentCards(ctx context.Context, userID string, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, methodListAppointmentCards, wrapperspb.String(userID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) DeleteAppointment(ctx context.Context, appointmentID int64, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodDeleteAppointment, wrapperspb.Int64(appointmentID), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
