package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName は gRPC ヘルスチェックで公開するサービス名です。勤怠集計サービスの完全修飾名と一致させます。
const ServiceName = "hrms.attendance.v1.AttendanceService"

const probeTimeout = 2 * time.Second

// Pinger はデータベースの疎通確認を行います。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options はサーバー構築時の設定です。
type Options struct {
	HTTPAddr        string
	GRPCAddr        string
	Handler         http.Handler
	DB              Pinger
	HealthInterval  time.Duration
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
	GRPCOptions     []grpc.ServerOption
	// RegisterGRPC はヘルス以外のアプリケーションサービスを登録します。
	RegisterGRPC func(grpc.ServiceRegistrar)
}

// Server は HTTP API と gRPC サービスのライフサイクルを管理します。
type Server struct {
	httpAddr        string
	grpcAddr        string
	httpServer      *http.Server
	grpcServer      *grpc.Server
	health          *health.Server
	db              Pinger
	interval        time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// New はサーバーを構築します。GRPCAddr が空の場合 gRPC は起動しません。
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.HealthInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	grpcServer := grpc.NewServer(opts.GRPCOptions...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	if opts.RegisterGRPC != nil {
		opts.RegisterGRPC(grpcServer)
	}
	reflection.Register(grpcServer)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		httpAddr: opts.HTTPAddr,
		grpcAddr: opts.GRPCAddr,
		httpServer: &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           opts.Handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer:      grpcServer,
		health:          healthServer,
		db:              opts.DB,
		interval:        interval,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると猶予時間内で停止します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}

	var grpcLis net.Listener
	if s.grpcAddr != "" {
		grpcLis, err = net.Listen("tcp", s.grpcAddr)
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.grpcAddr, err)
		}
	}

	return s.serve(ctx, httpLis, grpcLis)
}

func (s *Server) serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", "addr", httpLis.Addr().String())
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	if grpcLis != nil {
		g.Go(func() error {
			s.logger.Info("grpc server listening", "addr", grpcLis.Addr().String())
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		s.watchHealth(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

// watchHealth は interval ごとに DB へ ping し、gRPC のサービス状態を更新します。
func (s *Server) watchHealth(ctx context.Context) {
	s.probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *Server) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := s.db.Ping(pctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn("database probe failed", "error", err)
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down servers", "timeout", s.shutdownTimeout)
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http: %w", err))
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
		<-stopped
	}

	return errors.Join(errs...)
}
