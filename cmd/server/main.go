package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	grpchandler "github.com/ogurasousui/hrms-attendance/internal/adapters/grpc/handler"
	"github.com/ogurasousui/hrms-attendance/internal/adapters/grpc/interceptor"
	httphandler "github.com/ogurasousui/hrms-attendance/internal/adapters/http/handler"
	"github.com/ogurasousui/hrms-attendance/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hrms-attendance/internal/core/attendance"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
	"github.com/ogurasousui/hrms-attendance/internal/platform/config"
	pg "github.com/ogurasousui/hrms-attendance/internal/platform/db/postgres"
	"github.com/ogurasousui/hrms-attendance/internal/platform/logging"
	"github.com/ogurasousui/hrms-attendance/internal/platform/server"
	"google.golang.org/grpc"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initialize database pool: %w", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool, pg.WithLogger(logger))

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	attendanceRepo := postgres.NewAttendanceRepository(dbPool)

	employeeSvc := employee.NewService(employeeRepo, attendanceRepo, nil, txManager, cfg.Employee.AllowedEmailDomains)
	attendanceSvc := attendance.NewService(attendanceRepo, employeeRepo, nil, txManager)

	router := httphandler.NewRouter(httphandler.RouterDeps{
		Employees:   employeeSvc,
		Attendance:  attendanceSvc,
		DB:          dbPool,
		Logger:      logger,
		CORS:        cfg.CORS,
		SlowRequest: cfg.Server.SlowRequest,
	})

	srv := server.New(server.Options{
		HTTPAddr:        cfg.Server.HTTPListenAddr,
		GRPCAddr:        cfg.Server.GRPCListenAddr,
		Handler:         router,
		DB:              dbPool,
		HealthInterval:  cfg.Server.HealthInterval,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
		GRPCOptions: []grpc.ServerOption{
			grpc.ChainUnaryInterceptor(interceptor.Unary(logger)),
		},
		RegisterGRPC: func(r grpc.ServiceRegistrar) {
			grpchandler.RegisterAttendanceServiceServer(r, grpchandler.NewAttendanceHandler(attendanceSvc))
		},
	})

	logger.Info("starting hrms-attendance",
		"http_addr", cfg.Server.HTTPListenAddr,
		"grpc_addr", cfg.Server.GRPCListenAddr,
	)

	return srv.Run(ctx)
}
