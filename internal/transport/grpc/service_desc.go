package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "barbearia.v1.BookingService"

type BookingServiceServer interface {
	ListAvailability(ctx context.Context, req *ListAvailabilityRequest) (*ListAvailabilityResponse, error)
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error)
	CancelBooking(ctx context.Context, req *CancelBookingRequest) (*BookingResponse, error)
	RescheduleBooking(ctx context.Context, req *RescheduleBookingRequest) (*BookingResponse, error)
	ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error)
	CreateTimeOff(ctx context.Context, req *CreateTimeOffRequest) (*CreateTimeOffResponse, error)
	GetCatalog(ctx context.Context, req *GetCatalogRequest) (*GetCatalogResponse, error)
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListAvailability", Handler: unaryHandler("ListAvailability", BookingServiceServer.ListAvailability)},
		{MethodName: "CreateBooking", Handler: unaryHandler("CreateBooking", BookingServiceServer.CreateBooking)},
		{MethodName: "GetBooking", Handler: unaryHandler("GetBooking", BookingServiceServer.GetBooking)},
		{MethodName: "CancelBooking", Handler: unaryHandler("CancelBooking", BookingServiceServer.CancelBooking)},
		{MethodName: "RescheduleBooking", Handler: unaryHandler("RescheduleBooking", BookingServiceServer.RescheduleBooking)},
		{MethodName: "ListBookings", Handler: unaryHandler("ListBookings", BookingServiceServer.ListBookings)},
		{MethodName: "CreateTimeOff", Handler: unaryHandler("CreateTimeOff", BookingServiceServer.CreateTimeOff)},
		{MethodName: "GetCatalog", Handler: unaryHandler("GetCatalog", BookingServiceServer.GetCatalog)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "barbearia/v1/booking.proto",
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
