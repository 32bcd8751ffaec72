package employee

import (
	"context"
	"time"
)

// Repository は社員永続化の抽象です。
// 参照系はすべて論理削除済みの社員を除外します。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByCode(ctx context.Context, code Code) (*Employee, error)
	FindByEmail(ctx context.Context, email Email) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*Employee, int, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	HardDelete(ctx context.Context, id string) error
}

// AttendanceCounter は社員を参照する勤怠記録の件数を返します。
type AttendanceCounter interface {
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	Search     string
	Department string
	Limit      int
	Offset     int
}
