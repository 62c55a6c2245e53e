package identity

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/losalerces/backend/internal/apperr"
)

// Reason codes reported inside apperr.ValidationError.
const (
	CodeInvalidEmail                    = "InvalidEmail"
	CodeInvalidUserName                 = "InvalidUserName"
	CodeRequiredField                   = "RequiredField"
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordTooLong                 = "PasswordTooLong"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresUniqueChars     = "PasswordRequiresUniqueChars"
	CodeDuplicateUserName               = "DuplicateUserName"
	CodeDuplicateEmail                  = "DuplicateEmail"
	CodeDuplicateRut                    = "DuplicateRut"
	CodeDuplicateRoleName               = "DuplicateRoleName"
	CodeInvalidRoleName                 = "InvalidRoleName"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordPolicy struct {
	RequiredLength         int
	MaxBytes               int // zero disables the check
	RequiredUniqueChars    int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		RequiredLength:         6,
		MaxBytes:               MaxPasswordBytes,
		RequiredUniqueChars:    1,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// Validate returns every rule the password breaks, in a stable order.
func (p PasswordPolicy) Validate(password string) []apperr.Reason {
	var (
		reasons                                []apperr.Reason
		hasDigit, hasLower, hasUpper, nonAlnum bool
		unique                                 = map[rune]struct{}{}
	)
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			nonAlnum = true
		}
		unique[r] = struct{}{}
	}

	if len([]rune(password)) < p.RequiredLength {
		reasons = append(reasons, apperr.Reason{
			Code:        CodePasswordTooShort,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.RequiredLength),
		})
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		reasons = append(reasons, apperr.Reason{
			Code:        CodePasswordTooLong,
			Description: fmt.Sprintf("Passwords must be at most %d bytes.", p.MaxBytes),
		})
	}
	if p.RequireNonAlphanumeric && !nonAlnum {
		reasons = append(reasons, apperr.Reason{
			Code:        CodePasswordRequiresNonAlphanumeric,
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}
	if p.RequireDigit && !hasDigit {
		reasons = append(reasons, apperr.Reason{
			Code:        CodePasswordRequiresDigit,
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if p.RequireLowercase && !hasLower {
		reasons = append(reasons, apperr.Reason{
			Code:        CodePasswordRequiresLower,
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if p.RequireUppercase && !hasUpper {
		reasons = append(reasons, apperr.Reason{
			Code:        CodePasswordRequiresUpper,
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}
	if p.RequiredUniqueChars >= 1 && len(unique) < p.RequiredUniqueChars {
		reasons = append(reasons, apperr.Reason{
			Code:        CodePasswordRequiresUniqueChars,
			Description: fmt.Sprintf("Passwords must use at least %d different characters.", p.RequiredUniqueChars),
		})
	}
	return reasons
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validEmail(email string) bool {
	return validate.Var(email, "required,email,max=256") == nil
}

// Normalize is the lookup key for user names, emails and role names.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
