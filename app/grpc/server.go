package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-comgate/app/mapper"
	"github.com/vibast-solutions/ms-go-comgate/app/service"
	"github.com/vibast-solutions/ms-go-comgate/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	paymentService *service.PaymentService
}

func NewServer(paymentService *service.PaymentService) *Server {
	return &Server{paymentService: paymentService}
}

// InitiatePayment returns the gateway response for both outcomes; a failed
// initiation is not a transport error.
func (s *Server) InitiatePayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	l := loggerWithContext(ctx)

	var req types.InitiatePaymentRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	req.OrderToken = strings.TrimSpace(req.OrderToken)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if req.RequestId == "" {
		req.RequestId = RequestIDFromContext(ctx)
	}
	if err := req.Validate(); err != nil {
		l.WithError(err).Debug("Initiate payment validation failed")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp := s.paymentService.InitiatePayment(ctx, &req)
	if !resp.Success {
		l.WithField("order_token", req.OrderToken).Warn("Payment initiation failed")
	}
	return encodeStruct(mapper.GatewayResponseToTypes(resp))
}

func (s *Server) GetOrderPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.GetOrderPaymentRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	req.OrderToken = strings.TrimSpace(req.OrderToken)
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.paymentService.GetOrderPayment(ctx, req.GetOrderToken())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return nil, status.Error(codes.NotFound, "order not found")
		case errors.Is(err, service.ErrInvalidRequest):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		default:
			loggerWithContext(ctx).WithError(err).Error("Get order payment failed")
			return nil, status.Error(codes.Internal, "internal server error")
		}
	}

	return encodeStruct(mapper.OrderPaymentToTypes(item))
}

func decodeStruct(in *structpb.Struct, out interface{}) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func encodeStruct(in interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}
