package attendance

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

// RefKind は社員参照の種別です。
type RefKind int

const (
	RefCode RefKind = iota + 1
	RefInternal
)

// EmployeeRef は社員コードまたは内部 ID のいずれかを保持する参照です。
// ParseEmployeeRef で境界にて一度だけ判定します。
type EmployeeRef struct {
	kind  RefKind
	value string
}

// CodeRef は社員コードによる参照を生成します。
func CodeRef(code employee.Code) EmployeeRef {
	return EmployeeRef{kind: RefCode, value: code.String()}
}

// InternalRef は内部 ID による参照を生成します。
func InternalRef(id uuid.UUID) EmployeeRef {
	return EmployeeRef{kind: RefInternal, value: id.String()}
}

// ParseEmployeeRef は UUID 形式なら内部 ID、そうでなければ社員コードとして解釈します。
func ParseEmployeeRef(raw string) (EmployeeRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EmployeeRef{}, ErrMissingEmployeeRef
	}

	if id, err := uuid.Parse(trimmed); err == nil {
		return InternalRef(id), nil
	}

	code, err := employee.NewCode(trimmed)
	if err != nil {
		return EmployeeRef{}, ErrInvalidEmployeeRef.WithValue(trimmed)
	}
	return CodeRef(code), nil
}

// Kind は参照の種別を返します。
func (r EmployeeRef) Kind() RefKind {
	return r.kind
}

// IsZero は未設定の参照かを返します。
func (r EmployeeRef) IsZero() bool {
	return r.kind == 0
}

func (r EmployeeRef) String() string {
	return r.value
}

// Resolver は社員参照を内部 ID に解決します。
type Resolver struct {
	dir Directory
}

// NewResolver は Resolver を生成します。
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve は参照を内部 ID に解決します。
// 内部 ID はディレクトリを参照せずそのまま返し、社員コードは有効な社員を検索します。
func (r *Resolver) Resolve(ctx context.Context, ref EmployeeRef) (string, error) {
	switch ref.kind {
	case RefInternal:
		return ref.value, nil
	case RefCode:
		emp, err := r.dir.FindByCode(ctx, employee.Code(ref.value))
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return "", employee.NotFound(ref.value)
			}
			return "", err
		}
		return emp.ID, nil
	default:
		return "", ErrMissingEmployeeRef
	}
}

// ResolveString は生の文字列を解析してから解決します。
func (r *Resolver) ResolveString(ctx context.Context, raw string) (string, error) {
	ref, err := ParseEmployeeRef(raw)
	if err != nil {
		return "", err
	}
	return r.Resolve(ctx, ref)
}
