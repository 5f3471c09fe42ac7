package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "rectangle-service/internal/adapter/grpc"
	"rectangle-service/internal/adapter/grpc/middleware"
	"rectangle-service/internal/usecase/rectangle"
	"rectangle-service/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(rectangleUC rectangle.Usecase, l *zap.Logger, rateLimiter *middleware.RateLimiter) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)
	grpcadapter.RegisterRectangleServiceServer(grpcServer, grpcadapter.NewRectangleServer(rectangleUC, l))

	return grpcServer
}
