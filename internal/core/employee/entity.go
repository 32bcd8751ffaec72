package employee

import "time"

// DefaultStatus は作成時に指定がない場合の在籍状態です。
const DefaultStatus = "active"

// Employee は社員エンティティです。
type Employee struct {
	ID         string
	Code       Code
	FullName   string
	Email      Email
	Department string
	Position   *string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// IsActive は論理削除されていないかを返します。
func (e *Employee) IsActive() bool {
	return e != nil && e.DeletedAt == nil
}
