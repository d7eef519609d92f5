package dashboard

import "fmt"

const (
	CodeAuthRequired      = "AUTH_REQUIRED"
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeRemoteUnavailable = "REMOTE_UNAVAILABLE"
)

// BusinessError is the error surface of the controller: a stable code
// for transport mapping, a human message and optional details.
type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid value for '%s': %s", field, reason),
		Details: map[string]any{"field": field, "reason": reason},
	}
}

func NewRemoteUnavailable(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeRemoteUnavailable,
		Message: "task store request failed",
		Err:     err,
	}
}
