package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

// StatsByDate は指定日の勤怠を状態別に集計します。
// Rate は present / total の百分率で、記録がなければ 0 です。
func (s *Service) StatsByDate(ctx context.Context, date time.Time) (*DateStats, error) {
	if date.IsZero() {
		return nil, ErrMissingDate
	}
	day := NormalizeDate(date)

	var counts StatusCounts
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.repo.CountByStatus(txCtx, StatusFilter{StartDate: day, EndDate: day})
		if err != nil {
			return err
		}
		counts = c
		return nil
	}); err != nil {
		return nil, err
	}

	total := counts.Total()
	return &DateStats{
		Date:    day,
		Total:   total,
		Present: counts.Present,
		Absent:  counts.Absent,
		HalfDay: counts.HalfDay,
		Leave:   counts.Leave,
		Rate:    percentage(float64(counts.Present), float64(total)),
	}, nil
}

// StatsForEmployee は社員 1 名の期間内出勤率を計算します。
// 分母は期間内の平日数で、記録のない平日は欠勤扱いとなります。半日は 0.5 日として数えます。
func (s *Service) StatsForEmployee(ctx context.Context, employeeRef string, start, end time.Time) (*EmployeeStats, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrMissingDate
	}
	start = NormalizeDate(start)
	end = NormalizeDate(end)
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	ref, err := ParseEmployeeRef(employeeRef)
	if err != nil {
		return nil, err
	}

	var (
		employeeID string
		counts     StatusCounts
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		id, err := s.resolver.Resolve(txCtx, ref)
		if err != nil {
			return err
		}
		employeeID = id

		c, err := s.repo.CountByStatus(txCtx, StatusFilter{EmployeeID: id, StartDate: start, EndDate: end})
		if err != nil {
			return err
		}
		counts = c
		return nil
	}); err != nil {
		return nil, err
	}

	totalDays := CountWeekdays(start, end)
	effectivePresent := float64(counts.Present) + 0.5*float64(counts.HalfDay)

	return &EmployeeStats{
		EmployeeID:  employeeID,
		StartDate:   start,
		EndDate:     end,
		TotalDays:   totalDays,
		PresentDays: counts.Present,
		AbsentDays:  counts.Absent,
		HalfDays:    counts.HalfDay,
		LeaveDays:   counts.Leave,
		Rate:        percentage(effectivePresent, float64(totalDays)),
	}, nil
}

// EmployeeSummary は有効な社員を検索し、氏名を付けて期間内出勤率を返します。
// 削除済みまたは存在しない社員は NotFound になります。
func (s *Service) EmployeeSummary(ctx context.Context, employeeRef string, start, end time.Time) (*EmployeeSummary, error) {
	ref, err := ParseEmployeeRef(employeeRef)
	if err != nil {
		return nil, err
	}

	var emp *employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.lookupActive(txCtx, ref)
		if err != nil {
			return err
		}
		emp = found
		return nil
	}); err != nil {
		return nil, err
	}

	stats, err := s.StatsForEmployee(ctx, emp.ID, start, end)
	if err != nil {
		return nil, err
	}

	return &EmployeeSummary{
		EmployeeCode: emp.Code,
		EmployeeName: emp.FullName,
		Stats:        stats,
	}, nil
}

func (s *Service) lookupActive(ctx context.Context, ref EmployeeRef) (*employee.Employee, error) {
	var (
		emp *employee.Employee
		err error
	)
	switch ref.Kind() {
	case RefCode:
		emp, err = s.dir.FindByCode(ctx, employee.Code(ref.String()))
	case RefInternal:
		emp, err = s.dir.FindByID(ctx, ref.String())
	default:
		return nil, ErrMissingEmployeeRef
	}
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, employee.NotFound(ref.String())
		}
		return nil, err
	}
	return emp, nil
}

// StatsForRange は全社員の期間内勤怠を集計します。Rate は記録件数を分母とした present の百分率です。
func (s *Service) StatsForRange(ctx context.Context, start, end time.Time) (*RangeStats, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrMissingDate
	}
	start = NormalizeDate(start)
	end = NormalizeDate(end)
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	var counts StatusCounts
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.repo.CountByStatus(txCtx, StatusFilter{StartDate: start, EndDate: end})
		if err != nil {
			return err
		}
		counts = c
		return nil
	}); err != nil {
		return nil, err
	}

	total := counts.Total()
	return &RangeStats{
		StartDate:    start,
		EndDate:      end,
		TotalRecords: total,
		Present:      counts.Present,
		Absent:       counts.Absent,
		HalfDay:      counts.HalfDay,
		Leave:        counts.Leave,
		Rate:         percentage(float64(counts.Present), float64(total)),
	}, nil
}

// DefaultStatsWindow は当月 1 日から今日までの期間を返します。
func (s *Service) DefaultStatsWindow() (time.Time, time.Time) {
	today := NormalizeDate(s.clock.Now())
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), today
}
