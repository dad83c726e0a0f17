package auth

// Credentials is the submitted username/password pair.
type Credentials struct {
	Username string `validate:"required,alphanum,min=3,max=20"`
	Password string `validate:"required,password"`
}

// Attempt outcomes reported to metrics.
const (
	OutcomeSuccess            = "success"
	OutcomeValidation         = "validation"
	OutcomeDuplicate          = "duplicate"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
)
