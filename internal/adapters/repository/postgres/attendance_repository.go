package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrms-attendance/internal/core/attendance"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
	pgdb "github.com/ogurasousui/hrms-attendance/internal/platform/db/postgres"
)

const attendanceDailyConstraint = "attendance_employee_id_work_date_key"

const attendanceColumns = `id, employee_id, work_date, status, notes, marked_by, marked_at, created_at, updated_at`

// AttendanceRepository は PostgreSQL を利用した勤怠記録の永続化実装です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create は勤怠記録を登録します。
// 同時登録で一意制約に違反した場合も DuplicateError に変換します。
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO attendance (employee_id, work_date, status, notes, marked_by, marked_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+attendanceColumns,
		rec.EmployeeID,
		attendance.NormalizeDate(rec.Date),
		string(rec.Status),
		rec.Notes,
		rec.MarkedBy,
		rec.MarkedAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	created, err := scanRecord(row)
	if err != nil {
		return nil, translateAttendancePgError(err, rec)
	}
	return created, nil
}

// FindByID は ID で勤怠記録を取得します。
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.NotFound(id)
		}
		return nil, err
	}
	return found, nil
}

// Exists は社員と日付の組み合わせで記録が存在するかを返します。日付は [当日 0 時, 翌日 0 時) で比較します。
func (r *AttendanceRepository) Exists(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	day := attendance.NormalizeDate(date)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
              FROM attendance
             WHERE employee_id = $1 AND work_date >= $2 AND work_date < $3
        )
    `, employeeID, day, day.AddDate(0, 0, 1)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List は条件に一致する勤怠記録と総件数を返します。
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, int, error) {
	if filter.Limit <= 0 {
		return nil, 0, attendance.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, 0, attendance.ErrInvalidSkip
	}

	whereClause, args := attendanceConditions(filter.EmployeeID, filter.StartDate, filter.EndDate, filter.Status)
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var total int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM attendance`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderClause := "created_at DESC, id DESC"
	if filter.Chronological() {
		orderClause = "work_date ASC, created_at ASC, id ASC"
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + attendanceColumns + `
          FROM attendance` + whereClause + `
         ORDER BY ` + orderClause + `
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0, filter.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Update は状態とメモを部分更新します。nil の項目は既存値を維持します。
func (r *AttendanceRepository) Update(ctx context.Context, id string, patch attendance.Patch, updatedAt time.Time) (*attendance.Record, error) {
	var status any
	if patch.Status != nil {
		status = string(*patch.Status)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE attendance
           SET status = COALESCE($1, status),
               notes = COALESCE($2, notes),
               updated_at = $3
         WHERE id = $4
        RETURNING `+attendanceColumns,
		status,
		patch.Notes,
		updatedAt,
		id,
	)

	updated, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.NotFound(id)
		}
		return nil, err
	}
	return updated, nil
}

// Delete は勤怠記録を削除し、削除されたかを返します。
func (r *AttendanceRepository) Delete(ctx context.Context, id string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountByStatus は期間内の記録を状態別に 1 回のクエリで集計します。
func (r *AttendanceRepository) CountByStatus(ctx context.Context, filter attendance.StatusFilter) (attendance.StatusCounts, error) {
	start := attendance.NormalizeDate(filter.StartDate)
	end := attendance.NormalizeDate(filter.EndDate)
	whereClause, args := attendanceConditions(filter.EmployeeID, &start, &end, nil)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT status, COUNT(*)
          FROM attendance`+whereClause+`
         GROUP BY status
    `, args...)
	if err != nil {
		return attendance.StatusCounts{}, err
	}
	defer rows.Close()

	var counts attendance.StatusCounts
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return attendance.StatusCounts{}, err
		}
		counts.Add(attendance.Status(status), n)
	}
	if err := rows.Err(); err != nil {
		return attendance.StatusCounts{}, err
	}
	return counts, nil
}

// CountByEmployee は社員を参照している勤怠記録の件数を返します。
func (r *AttendanceRepository) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM attendance WHERE employee_id = $1`, employeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func attendanceConditions(employeeID string, start, end *time.Time, status *attendance.Status) (string, []any) {
	args := make([]any, 0, 6)
	conditions := make([]string, 0, 4)

	if employeeID != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "employee_id = "+placeholder)
		args = append(args, employeeID)
	}
	if start != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "work_date >= "+placeholder)
		args = append(args, attendance.NormalizeDate(*start))
	}
	if end != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "work_date < "+placeholder)
		args = append(args, attendance.NormalizeDate(*end).AddDate(0, 0, 1))
	}
	if status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*status))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanRecord(row pgx.Row) (*attendance.Record, error) {
	var (
		id         string
		employeeID string
		workDate   time.Time
		status     string
		notes      sql.NullString
		markedBy   string
		markedAt   time.Time
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&workDate,
		&status,
		&notes,
		&markedBy,
		&markedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var notesPtr *string
	if notes.Valid {
		v := notes.String
		notesPtr = &v
	}

	return &attendance.Record{
		ID:         id,
		EmployeeID: employeeID,
		Date:       attendance.NormalizeDate(workDate),
		Status:     attendance.Status(status),
		Notes:      notesPtr,
		MarkedBy:   markedBy,
		MarkedAt:   markedAt.UTC(),
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  updatedAt.UTC(),
	}, nil
}

func translateAttendancePgError(err error, rec *attendance.Record) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == attendanceDailyConstraint {
				return attendance.DuplicateRecord(rec.EmployeeID, rec.Date)
			}
		case foreignKeyViolationCode:
			return employee.NotFound(rec.EmployeeID)
		}
	}

	return err
}
