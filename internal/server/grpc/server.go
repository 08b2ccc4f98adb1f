// Package grpc exposes the identity and day mirror services over the
// daybook.v1.DayBook gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/rpc"
	"github.com/dmitrijs2005/daybook/internal/server/metrics"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	SignInAnonymously(ctx context.Context) (*services.Session, error)
	LinkCredential(ctx context.Context, userID, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
}

type daySvc interface {
	Exists(ctx context.Context, userID, date string) (bool, error)
	Upsert(ctx context.Context, w models.DayWrite) error
	List(ctx context.Context, userID string) ([]models.DayDocument, error)
}

type GRPCServer struct {
	rpc.UnimplementedDayBookServer
	address   string
	users     userSvc
	days      daySvc
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, ds daySvc, mt *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		days:      ds,
		metrics:   mt,
		jwtSecret: []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	rpc.RegisterDayBookServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
