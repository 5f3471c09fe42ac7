package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"rectangle-service/cmd/api/di"
	"rectangle-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Gin    *http.Server
}

// New creates a new server instance from the container's dependencies
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		GRPC:   SetupGRPC(c.RectangleUC, l, c.RateLimiter),
		Gin: SetupGinServer(
			c.GinHandler,
			c.Redis(),
			c.HTTPRateLimit,
			cfg.Logger.ServiceName,
			":"+cfg.App.HTTPPort,
			l,
		),
	}
}

// Start runs the gRPC and Gin servers and blocks until one of them stops.
// Listeners are opened up front so a busy port fails Start before anything serves.
func (s *Server) Start() error {
	lc := net.ListenConfig{}

	grpcLis, err := lc.Listen(context.Background(), "tcp", s.grpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	httpLis, err := lc.Listen(context.Background(), "tcp", s.Gin.Addr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to listen for HTTP: %w", err)
	}

	errCh := make(chan error, 2)

	go func() {
		s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("gRPC server: %w", err)
			return
		}
		errCh <- nil
	}()

	go func() {
		s.Logger.Info("Gin REST API running", zap.String("address", httpLis.Addr().String()))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("gin server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}
