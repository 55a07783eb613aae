package service

import (
	"context"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/teamshiksha/accounts/pkg/api"
)

// Validation messages match the wording clients already depend on.
const (
	MsgFieldRequired     = "This field is required."
	MsgEmailInvalid      = "Enter a valid email address."
	MsgEmailTaken        = "A user with this email already exists."
	MsgPasswordTooShort  = "Password must be at least 6 characters."
	MsgPasswordUppercase = "Password must contain at least 1 uppercase letter."
	MsgPasswordLowercase = "Password must contain at least 1 lowercase letter."
	MsgPasswordDigit     = "Password must contain at least 1 number."
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExistsFunc reports whether a value is already taken.
type ExistsFunc func(ctx context.Context, value string) (bool, error)

// ValidateEmail checks email shape and uniqueness, appending any failures to
// errs. Uniqueness is advisory here, the unique index remains the authority
// of last resort.
func ValidateEmail(ctx context.Context, email string, exists ExistsFunc, errs api.FieldErrors) error {
	if email == "" {
		errs.Add("email", MsgFieldRequired)
		return nil
	}
	if err := validate.Var(email, "email"); err != nil {
		errs.Add("email", MsgEmailInvalid)
		return nil
	}

	taken, err := exists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		errs.Add("email", MsgEmailTaken)
	}
	return nil
}

// ValidatePassword applies the complexity rules, appending every failing
// reason to errs in a fixed order: length, uppercase, lowercase, digit.
func ValidatePassword(password string, errs api.FieldErrors) {
	if password == "" {
		errs.Add("password", MsgFieldRequired)
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if len([]rune(password)) < MinPasswordLength {
		errs.Add("password", MsgPasswordTooShort)
	}
	if !hasUpper {
		errs.Add("password", MsgPasswordUppercase)
	}
	if !hasLower {
		errs.Add("password", MsgPasswordLowercase)
	}
	if !hasDigit {
		errs.Add("password", MsgPasswordDigit)
	}
}
