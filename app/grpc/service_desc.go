package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName                 = "comgate.PaymentsService"
	initiatePaymentFullMethod   = "/" + serviceName + "/InitiatePayment"
	getOrderPaymentFullMethod   = "/" + serviceName + "/GetOrderPayment"
	paymentsServiceMetadataFile = "comgate/payments.proto"
)

// PaymentsServiceServer exchanges google.protobuf.Struct messages whose
// fields mirror the JSON bodies of the HTTP API.
type PaymentsServiceServer interface {
	InitiatePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrderPayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var PaymentsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PaymentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitiatePayment", Handler: initiatePaymentHandler},
		{MethodName: "GetOrderPayment", Handler: getOrderPaymentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: paymentsServiceMetadataFile,
}

func RegisterPaymentsServiceServer(registrar grpc.ServiceRegistrar, srv PaymentsServiceServer) {
	registrar.RegisterService(&PaymentsServiceDesc, srv)
}

func initiatePaymentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PaymentsServiceServer).InitiatePayment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: initiatePaymentFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PaymentsServiceServer).InitiatePayment(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderPaymentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PaymentsServiceServer).GetOrderPayment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getOrderPaymentFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PaymentsServiceServer).GetOrderPayment(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
