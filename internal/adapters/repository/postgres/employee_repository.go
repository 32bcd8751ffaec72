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
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
	pgdb "github.com/ogurasousui/hrms-attendance/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"

	employeeCodeConstraint  = "employees_employee_code_key"
	employeeEmailConstraint = "employees_email_key"
)

const employeeColumns = `id, employee_code, full_name, email, department, position, status, created_at, updated_at, deleted_at`

// activeEmployee は有効な社員を表す条件で、全ての読み取りに適用します。
const activeEmployee = `deleted_at IS NULL`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (employee_code, full_name, email, department, position, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+employeeColumns,
		e.Code.String(),
		e.FullName,
		e.Email.String(),
		e.Department,
		e.Position,
		e.Status,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err, e)
	}
	return created, nil
}

// FindByID は ID で有効な社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, "id = $1", id, id)
}

// FindByCode は社員コードで有効な社員を取得します。
func (r *EmployeeRepository) FindByCode(ctx context.Context, code employee.Code) (*employee.Employee, error) {
	return r.findOne(ctx, "employee_code = $1", code.String(), code.String())
}

// FindByEmail はメールアドレスで有効な社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email employee.Email) (*employee.Employee, error) {
	return r.findOne(ctx, "email = $1", email.String(), email.String())
}

func (r *EmployeeRepository) findOne(ctx context.Context, condition string, arg any, identifier string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE `+condition+` AND `+activeEmployee+`
         LIMIT 1
    `, arg)

	found, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.NotFound(identifier)
		}
		return nil, err
	}
	return found, nil
}

// List は有効な社員を作成日時の降順で返します。2 つ目の戻り値はページングに依存しない総件数です。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, int, error) {
	if filter.Limit <= 0 {
		return nil, 0, employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, 0, employee.ErrInvalidSkip
	}

	args := make([]any, 0, 4)
	conditions := []string{activeEmployee}

	if search := strings.TrimSpace(filter.Search); search != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(full_name ILIKE "+placeholder+
			" OR email ILIKE "+placeholder+
			" OR employee_code ILIKE "+placeholder+
			" OR position ILIKE "+placeholder+")")
		args = append(args, "%"+escapeLike(search)+"%")
	}

	if department := strings.TrimSpace(filter.Department); department != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "department = "+placeholder)
		args = append(args, department)
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var total int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// SoftDelete は deleted_at を設定して社員を論理削除します。
func (r *EmployeeRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees
           SET deleted_at = $1,
               updated_at = $1
         WHERE id = $2 AND `+activeEmployee, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return employee.NotFound(id)
	}
	return nil
}

// HardDelete は社員行を物理削除します。勤怠記録から参照されている場合は外部キー制約で拒否されます。
func (r *EmployeeRepository) HardDelete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return employee.ErrEmployeeHasAttendance
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return employee.NotFound(id)
	}
	return nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id         string
		code       string
		fullName   string
		email      string
		department string
		position   sql.NullString
		status     string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	if err := row.Scan(
		&id,
		&code,
		&fullName,
		&email,
		&department,
		&position,
		&status,
		&createdAt,
		&updatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	var positionPtr *string
	if position.Valid {
		v := position.String
		positionPtr = &v
	}

	var deletedPtr *time.Time
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		deletedPtr = &t
	}

	return &employee.Employee{
		ID:         id,
		Code:       employee.Code(code),
		FullName:   fullName,
		Email:      employee.Email(email),
		Department: department,
		Position:   positionPtr,
		Status:     status,
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  updatedAt.UTC(),
		DeletedAt:  deletedPtr,
	}, nil
}

func translateEmployeePgError(err error, e *employee.Employee) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case employeeEmailConstraint:
			return employee.DuplicateEmail(e.Email.String())
		case employeeCodeConstraint:
			return employee.DuplicateCode(e.Code.String())
		}
	}

	return err
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
