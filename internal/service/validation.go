package service

// ValidationError marks request input that failed semantic validation after
// sanitization. Handlers surface its message with a 400 status.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}
