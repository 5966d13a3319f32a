package rpc

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// LoggingUnary returns a unary client interceptor for structured call logging.
// Metadata only, never payloads.
func LoggingUnary(log *zap.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		log.Debug("rpc",
			zap.String("method", method),
			zap.String("code", status.Code(err).String()),
			zap.Duration("dur", time.Since(start)),
		)
		return err
	}
}

// RequestIDUnary attaches a fresh x-request-id to every outgoing call.
func RequestIDUnary() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id, err := uuid.NewV4(); err == nil {
			ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", id.String())
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
