package employee

import (
	"regexp"
	"strings"
)

var (
	employeeCodePattern = regexp.MustCompile(`^EMP\d{1,6}$`)
	emailLocalPattern   = regexp.MustCompile(`^[a-z0-9._%+-]+$`)
)

// DefaultEmailDomains は登録を許可するメールドメインの既定値です。
var DefaultEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"company.com",
	"org.com",
	"net.com",
}

// Code は検証済みの社員コードです。NewCode 以外で生成しないでください。
type Code string

// NewCode は入力を大文字化し EMP + 1〜6 桁の形式か検証します。
func NewCode(raw string) (Code, error) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if !employeeCodePattern.MatchString(upper) {
		return "", ErrInvalidEmployeeCode.WithValue(strings.TrimSpace(raw))
	}
	return Code(upper), nil
}

// IsCode は raw が社員コードとして解釈可能かを返します。
func IsCode(raw string) bool {
	_, err := NewCode(raw)
	return err == nil
}

func (c Code) String() string {
	return string(c)
}

// Email は検証済みのメールアドレスです。
type Email string

// EmailPolicy は許可されたドメインに基づきメールアドレスを検証します。
type EmailPolicy struct {
	domains map[string]struct{}
}

// NewEmailPolicy は EmailPolicy を生成します。domains が空なら既定値を使います。
func NewEmailPolicy(domains []string) EmailPolicy {
	if len(domains) == 0 {
		domains = DefaultEmailDomains
	}
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return EmailPolicy{domains: set}
}

// NewEmail は入力を小文字化し、形式とドメインを検証します。
func (p EmailPolicy) NewEmail(raw string) (Email, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	local, domain, ok := strings.Cut(lower, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "", ErrInvalidEmail.WithValue(lower)
	}
	if !emailLocalPattern.MatchString(local) {
		return "", ErrInvalidEmail.WithValue(lower)
	}
	if _, allowed := p.domains[domain]; !allowed {
		return "", ErrInvalidEmail.WithValue(lower)
	}
	return Email(lower), nil
}

func (e Email) String() string {
	return string(e)
}
