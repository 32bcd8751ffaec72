package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
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
)

// Service は勤怠記録と集計のユースケースをまとめます。
type Service struct {
	repo     Repository
	dir      Directory
	resolver *Resolver
	clock    Clock
	tx       TransactionManager
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	MarkAttendance(ctx context.Context, in MarkAttendanceInput) (*Record, error)
	GetAttendance(ctx context.Context, id string) (*Record, error)
	ListAttendance(ctx context.Context, in ListAttendanceInput) (*ListAttendanceResult, error)
	ListEmployeeAttendance(ctx context.Context, in ListAttendanceInput) (*ListAttendanceResult, error)
	UpdateAttendance(ctx context.Context, in UpdateAttendanceInput) (*Record, error)
	DeleteAttendance(ctx context.Context, id string) (bool, error)
	StatsByDate(ctx context.Context, date time.Time) (*DateStats, error)
	StatsForEmployee(ctx context.Context, employeeRef string, start, end time.Time) (*EmployeeStats, error)
	EmployeeSummary(ctx context.Context, employeeRef string, start, end time.Time) (*EmployeeSummary, error)
	StatsForRange(ctx context.Context, start, end time.Time) (*RangeStats, error)
	DefaultStatsWindow() (time.Time, time.Time)
}

// NewService は Service を生成します。
func NewService(repo Repository, dir Directory, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{
		repo:     repo,
		dir:      dir,
		resolver: NewResolver(dir),
		clock:    clock,
		tx:       tx,
	}
}

// Resolver は社員参照の解決器を返します。
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// MarkAttendanceInput は勤怠登録時の入力です。
type MarkAttendanceInput struct {
	EmployeeRef string
	Date        time.Time
	Status      string
	Notes       *string
	MarkedBy    string
}

// ListAttendanceInput は一覧取得時の入力です。
type ListAttendanceInput struct {
	EmployeeRef string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      string
	Skip        int
	Limit       int
}

// ListAttendanceResult は一覧取得結果です。Total はページングに依存しない総件数です。
type ListAttendanceResult struct {
	Records []*Record
	Total   int
	Skip    int
	Limit   int
}

// UpdateAttendanceInput は部分更新の入力です。
type UpdateAttendanceInput struct {
	ID     string
	Status *string
	Notes  *string
}

// MarkAttendance は勤怠を登録します。
// 未来日はストレージに触れる前に拒否し、同一社員・同一日の記録が既にあれば DuplicateError を返します。
func (s *Service) MarkAttendance(ctx context.Context, in MarkAttendanceInput) (*Record, error) {
	if in.Date.IsZero() {
		return nil, ErrMissingDate
	}

	now := s.clock.Now()
	date := NormalizeDate(in.Date)
	if date.After(NormalizeDate(now)) {
		return nil, ErrFutureDate
	}

	ref, err := ParseEmployeeRef(in.EmployeeRef)
	if err != nil {
		return nil, err
	}

	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	markedBy := strings.TrimSpace(in.MarkedBy)
	if markedBy == "" {
		markedBy = DefaultMarkedBy
	}

	var created *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		employeeID, err := s.resolveActive(txCtx, ref)
		if err != nil {
			return err
		}

		exists, err := s.repo.Exists(txCtx, employeeID, date)
		if err != nil {
			return err
		}
		if exists {
			return DuplicateRecord(employeeID, date)
		}

		result, err := s.repo.Create(txCtx, &Record{
			EmployeeID: employeeID,
			Date:       date,
			Status:     status,
			Notes:      in.Notes,
			MarkedBy:   markedBy,
			MarkedAt:   now,
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

// GetAttendance は ID で勤怠記録を取得します。
func (s *Service) GetAttendance(ctx context.Context, id string) (*Record, error) {
	recordID, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}

	var found *Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		rec, err := s.repo.FindByID(txCtx, recordID)
		if err != nil {
			return err
		}
		found = rec
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListAttendance は勤怠記録の一覧を返します。
func (s *Service) ListAttendance(ctx context.Context, in ListAttendanceInput) (*ListAttendanceResult, error) {
	return s.list(ctx, in, false)
}

// ListEmployeeAttendance は有効な社員 1 名の勤怠一覧を返します。社員が存在しなければ NotFound です。
func (s *Service) ListEmployeeAttendance(ctx context.Context, in ListAttendanceInput) (*ListAttendanceResult, error) {
	if strings.TrimSpace(in.EmployeeRef) == "" {
		return nil, ErrMissingEmployeeRef
	}
	return s.list(ctx, in, true)
}

func (s *Service) list(ctx context.Context, in ListAttendanceInput, requireActive bool) (*ListAttendanceResult, error) {
	limit, err := normalizePageSize(in.Limit)
	if err != nil {
		return nil, err
	}
	if in.Skip < 0 {
		return nil, ErrInvalidSkip
	}

	start, end, err := normalizeOptionalRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if strings.TrimSpace(in.Status) != "" {
		status, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		statusPtr = &status
	}

	var ref EmployeeRef
	if strings.TrimSpace(in.EmployeeRef) != "" {
		ref, err = ParseEmployeeRef(in.EmployeeRef)
		if err != nil {
			return nil, err
		}
	}

	var (
		records []*Record
		total   int
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		filter := ListFilter{
			StartDate: start,
			EndDate:   end,
			Status:    statusPtr,
			Limit:     limit,
			Offset:    in.Skip,
		}

		if !ref.IsZero() {
			var employeeID string
			if requireActive {
				employeeID, err = s.resolveActive(txCtx, ref)
			} else {
				employeeID, err = s.resolver.Resolve(txCtx, ref)
			}
			if err != nil {
				return err
			}
			filter.EmployeeID = employeeID
		}

		list, count, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		records = list
		total = count
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListAttendanceResult{Records: records, Total: total, Skip: in.Skip, Limit: limit}, nil
}

// UpdateAttendance は状態とメモを部分更新します。対象がなければ NotFound を返します。
func (s *Service) UpdateAttendance(ctx context.Context, in UpdateAttendanceInput) (*Record, error) {
	recordID, err := parseRecordID(in.ID)
	if err != nil {
		return nil, err
	}

	var patch Patch
	if in.Status != nil {
		status, err := ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}
	patch.Notes = in.Notes

	var updated *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		var (
			rec *Record
			err error
		)
		if patch.Empty() {
			rec, err = s.repo.FindByID(txCtx, recordID)
		} else {
			rec, err = s.repo.Update(txCtx, recordID, patch, s.clock.Now())
		}
		if err != nil {
			return err
		}
		updated = rec
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteAttendance は勤怠記録を削除し、削除されたかを返します。
func (s *Service) DeleteAttendance(ctx context.Context, id string) (bool, error) {
	recordID, err := parseRecordID(id)
	if err != nil {
		return false, err
	}

	var deleted bool
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.Delete(txCtx, recordID)
		if err != nil {
			return err
		}
		deleted = ok
		return nil
	}); err != nil {
		return false, err
	}

	return deleted, nil
}

// resolveActive は参照を解決し、社員が論理削除されていないことを確認します。
func (s *Service) resolveActive(ctx context.Context, ref EmployeeRef) (string, error) {
	employeeID, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if ref.Kind() == RefCode {
		return employeeID, nil
	}

	if _, err := s.dir.FindByID(ctx, employeeID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", employee.NotFound(ref.String())
		}
		return "", err
	}
	return employeeID, nil
}

func parseRecordID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

func normalizeOptionalRange(start, end *time.Time) (*time.Time, *time.Time, error) {
	var startPtr, endPtr *time.Time
	if start != nil && !start.IsZero() {
		d := NormalizeDate(*start)
		startPtr = &d
	}
	if end != nil && !end.IsZero() {
		d := NormalizeDate(*end)
		endPtr = &d
	}
	if startPtr != nil && endPtr != nil && startPtr.After(*endPtr) {
		return nil, nil, ErrInvalidDateRange
	}
	return startPtr, endPtr, nil
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
