package services

import "errors"

var (
	// ErrForbidden is returned when the caller is not allowed to mutate
	// the target record (not the creator / not the account owner).
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned uniformly for unknown email and
	// wrong password, so login failures are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registration or a profile edit
	// would claim an email that belongs to another account.
	ErrEmailTaken = errors.New("email already exists")
)

// ValidationError reports missing or malformed request input. Its
// message is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(message string) error {
	return &ValidationError{Message: message}
}
