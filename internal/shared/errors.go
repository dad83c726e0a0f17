package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed username or password input.
	ErrValidation = errors.New("invalid username or password format")
	// ErrDuplicateUser indicates the username is already taken.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrInvalidCredentials indicates login failure. Unknown users and wrong
	// passwords both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthorized indicates the session lacks the required role.
	ErrNotAuthorized = errors.New("not authorized")
)
