package interceptor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Unary は gRPC 呼び出しごとに構造化ログを出力し、ドメインエラーを gRPC ステータスに変換します。
// パニックは Internal として返します。
func Unary(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc handler panicked", "method", info.FullMethod, "panic", r)
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()

		resp, err = handler(ctx, req)
		err = toStatusError(err)

		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		}
		switch {
		case code == codes.Internal || code == codes.Unknown:
			logger.Error("grpc request failed", append(attrs, "error", err)...)
		case err != nil:
			logger.Warn("grpc request rejected", append(attrs, "error", err)...)
		default:
			logger.Debug("grpc request completed", attrs...)
		}

		return resp, err
	}
}

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, apperr.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, apperr.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, employee.ErrEmployeeHasAttendance):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
