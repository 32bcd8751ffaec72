package employee

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	DefaultListPageSize = 100
	MaxListPageSize     = 100

	minFullNameLength = 2
	maxFullNameLength = 100
)

// Service は社員ディレクトリのユースケースをまとめます。
type Service struct {
	repo       Repository
	attendance AttendanceCounter
	clock      Clock
	tx         TransactionManager
	emails     EmailPolicy
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, code string) (*Employee, error)
	GetEmployeeByID(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	DeleteEmployee(ctx context.Context, code string) error
	PurgeEmployee(ctx context.Context, code string) error
}

// NewService は Service を生成します。emailDomains が空の場合は DefaultEmailDomains を使います。
func NewService(repo Repository, attendance AttendanceCounter, clock Clock, tx TransactionManager, emailDomains []string) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{
		repo:       repo,
		attendance: attendance,
		clock:      clock,
		tx:         tx,
		emails:     NewEmailPolicy(emailDomains),
	}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	Code       string
	FullName   string
	Email      string
	Department string
	Position   *string
	Status     string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Search     string
	Department string
	Skip       int
	Limit      int
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees []*Employee
	Total     int
	Skip      int
	Limit     int
}

// CreateEmployee は新しい社員を作成します。社員コードとメールアドレスの重複は拒否されます。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	code, err := NewCode(in.Code)
	if err != nil {
		return nil, err
	}

	email, err := s.emails.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(in.FullName)
	if n := utf8.RuneCountInString(fullName); n < minFullNameLength || n > maxFullNameLength {
		return nil, ErrInvalidFullName
	}

	department := strings.TrimSpace(in.Department)
	if department == "" {
		return nil, ErrInvalidDepartment
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = DefaultStatus
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureCodeNotExists(txCtx, code); err != nil {
			return err
		}
		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			Code:       code,
			FullName:   fullName,
			Email:      email,
			Department: department,
			Position:   trimOptional(in.Position),
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetEmployee は社員コードで有効な社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, code string) (*Employee, error) {
	normalized, err := NewCode(code)
	if err != nil {
		return nil, err
	}

	var found *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.repo.FindByCode(txCtx, normalized)
		if err != nil {
			return err
		}
		found = emp
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// GetEmployeeByID は内部 ID で有効な社員を取得します。
func (s *Service) GetEmployeeByID(ctx context.Context, id string) (*Employee, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrInvalidID
	}

	var found *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.repo.FindByID(txCtx, parsed.String())
		if err != nil {
			return err
		}
		found = emp
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListEmployees は検索語と部署で絞り込んだ社員一覧を返します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.Limit)
	if err != nil {
		return nil, err
	}
	if in.Skip < 0 {
		return nil, ErrInvalidSkip
	}

	var (
		employees []*Employee
		total     int
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		list, count, err := s.repo.List(txCtx, ListFilter{
			Search:     strings.TrimSpace(in.Search),
			Department: strings.TrimSpace(in.Department),
			Limit:      limit,
			Offset:     in.Skip,
		})
		if err != nil {
			return err
		}
		employees = list
		total = count
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, Total: total, Skip: in.Skip, Limit: limit}, nil
}

// DeleteEmployee は社員を論理削除します。勤怠記録は履歴として残ります。
func (s *Service) DeleteEmployee(ctx context.Context, code string) error {
	normalized, err := NewCode(code)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.repo.FindByCode(txCtx, normalized)
		if err != nil {
			return err
		}
		return s.repo.SoftDelete(txCtx, emp.ID, s.clock.Now())
	})
}

// PurgeEmployee は勤怠記録から参照されていない社員を物理削除します。
func (s *Service) PurgeEmployee(ctx context.Context, code string) error {
	normalized, err := NewCode(code)
	if err != nil {
		return err
	}
	if s.attendance == nil {
		return errors.New("employee: attendance counter is not configured")
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.repo.FindByCode(txCtx, normalized)
		if err != nil {
			return err
		}

		refs, err := s.attendance.CountByEmployee(txCtx, emp.ID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrEmployeeHasAttendance
		}

		return s.repo.HardDelete(txCtx, emp.ID)
	})
}

func (s *Service) ensureCodeNotExists(ctx context.Context, code Code) error {
	emp, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if emp != nil {
		return DuplicateCode(code.String())
	}
	return nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email Email) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if emp != nil {
		return DuplicateEmail(email.String())
	}
	return nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize == 0 {
		return DefaultListPageSize, nil
	}
	if pageSize < 0 || pageSize > MaxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}
