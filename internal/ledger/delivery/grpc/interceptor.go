package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tair/retail-ledger/pkg/logger"
)

// LoggingInterceptor logs gRPC requests
func LoggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	event := logger.Debug(ctx)
	if err != nil {
		event = logger.Warn(ctx).Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("duration", time.Since(start)).
		Msg("gRPC request")

	return resp, err
}

// RecoveryInterceptor turns handler panics into Internal errors
func RecoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx).
				Interface("panic", r).
				Str("method", info.FullMethod).
				Msg("gRPC handler panic recovered")
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
