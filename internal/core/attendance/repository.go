package attendance

import (
	"context"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

// Repository は勤怠記録永続化の抽象です。
// (EmployeeID, Date) の一意性はストレージ側の制約で保証され、違反は DuplicateRecord に変換されます。
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	FindByID(ctx context.Context, id string) (*Record, error)
	Exists(ctx context.Context, employeeID string, date time.Time) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, int, error)
	Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) (*Record, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByStatus(ctx context.Context, filter StatusFilter) (StatusCounts, error)
}

// Directory は勤怠側が参照する社員ディレクトリの検索操作です。
type Directory interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	FindByCode(ctx context.Context, code employee.Code) (*employee.Employee, error)
}

// ListFilter は一覧取得用フィルタです。日付範囲は両端を含みます。
type ListFilter struct {
	EmployeeID string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *Status
	Limit      int
	Offset     int
}

// Chronological は日付昇順で並べるべきかを返します。
// 社員または日付で絞り込む場合は日付昇順、それ以外は作成日時の降順です。
func (f ListFilter) Chronological() bool {
	return f.EmployeeID != "" || f.StartDate != nil || f.EndDate != nil
}

// StatusFilter は状態別集計の対象範囲です。EmployeeID が空なら全社員が対象です。
type StatusFilter struct {
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
}

// Patch は部分更新の内容です。nil のフィールドは変更しません。
type Patch struct {
	Status *Status
	Notes  *string
}

// Empty は変更内容がないかを返します。
func (p Patch) Empty() bool {
	return p.Status == nil && p.Notes == nil
}
