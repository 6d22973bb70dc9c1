package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
)

// Input rules.
const (
	NameMinLen     = 3
	NameMaxLen     = 30
	PasswordMinLen = 8
	PasswordMaxLen = cryptox.MaxPasswordBytes

	passwordSpecials = "!@#$%^&*"

	MsgPasswordPolicy = "Password must contain at least one uppercase, one lowercase, one number and one special character"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// violations collects per-field messages in the order fields were checked.
// The first one becomes the error message.
type violations struct {
	first  string
	fields map[string]string
}

func (v *violations) add(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, ok := v.fields[field]; ok {
		return
	}
	if v.first == "" {
		v.first = msg
	}
	v.fields[field] = msg
}

func (v *violations) err() error {
	if v.first == "" {
		return nil
	}
	return domain.Validation(v.first, v.fields)
}

func required(v *violations, field, value string) bool {
	if value == "" {
		v.add(field, fmt.Sprintf("%q is required", field))
		return false
	}
	return true
}

func lengthBetween(v *violations, field, value string, minLen, maxLen int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < minLen:
		v.add(field, fmt.Sprintf("%q length must be at least %d characters long", field, minLen))
	case maxLen > 0 && n > maxLen:
		v.add(field, fmt.Sprintf("%q length must be less than or equal to %d characters long", field, maxLen))
	}
}

func checkEmail(v *violations, value string) {
	if !required(v, "email", value) {
		return
	}
	if !validEmail(value) {
		v.add("email", `"email" must be a valid email`)
	}
}

// validEmail accepts a bare addr-spec whose domain has at least two labels.
func validEmail(s string) bool {
	if strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}

	at := strings.LastIndexByte(s, '@')
	domainPart := s[at+1:]
	if !strings.Contains(domainPart, ".") || strings.HasPrefix(domainPart, ".") || strings.HasSuffix(domainPart, ".") {
		return false
	}
	for _, label := range strings.Split(domainPart, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

func checkNewPassword(v *violations, field, value string) {
	if !required(v, field, value) {
		return
	}
	lengthBetween(v, field, value, PasswordMinLen, 0)
	if len(value) > PasswordMaxLen {
		v.add(field, fmt.Sprintf("%q length must be less than or equal to %d bytes long", field, PasswordMaxLen))
	}
	if !meetsPasswordPolicy(value) {
		v.add(field, MsgPasswordPolicy)
	}
}

// meetsPasswordPolicy requires a lowercase letter, an uppercase letter, a
// digit and one of !@#$%^&*.
func meetsPasswordPolicy(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// Validate checks a registration request.
func (in RegisterInput) Validate() error {
	var v violations
	if required(&v, "name", in.Name) {
		lengthBetween(&v, "name", in.Name, NameMinLen, NameMaxLen)
	}
	checkEmail(&v, in.Email)
	checkNewPassword(&v, "password", in.Password)
	return v.err()
}

// Validate checks a login request. The password policy is not applied here;
// only presence is checked.
func (in LoginInput) Validate() error {
	var v violations
	checkEmail(&v, in.Email)
	required(&v, "password", in.Password)
	return v.err()
}

// Validate checks a password change. Reusing the current password is
// reported ahead of any policy failure on the new one.
func (in ChangePasswordInput) Validate() error {
	var v violations
	required(&v, "currentPassword", in.CurrentPassword)

	if in.NewPassword != "" && in.NewPassword == in.CurrentPassword {
		return domain.ErrSamePassword
	}

	checkNewPassword(&v, "newPassword", in.NewPassword)
	return v.err()
}
