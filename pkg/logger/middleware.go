package logger

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the header (and gRPC metadata key) carrying the request ID.
const RequestIDHeader = "x-request-id"

// NewRequestID returns a fresh random request ID.
func NewRequestID() string {
	return uuid.New().String()
}

// RequestIDInterceptor is a gRPC interceptor that puts a request ID into the context.
// An ID sent by the caller in x-request-id metadata is kept; otherwise a new one is generated.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDHeader); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = NewRequestID()
		}

		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		return handler(WithRequestID(ctx, requestID), req)
	}
}
