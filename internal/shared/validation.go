package shared

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validation rules for credential input.
const (
	UsernameRule = "required,alphanum,min=3,max=20"
	PasswordRule = "required,password"
)

var passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,30}$`)

// NewValidator returns a validator with the credential rules registered.
// Passwords are limited to 3-30 ASCII letters and digits; punctuation and
// whitespace are rejected.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return passwordPattern.MatchString(fl.Field().String())
	})
	return v
}
