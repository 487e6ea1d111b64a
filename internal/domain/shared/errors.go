package shared

// DomainError is an error with a stable machine readable code. HTTP handlers
// map codes onto response statuses and sync jobs record them verbatim in the
// sync log.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so a wrapped error still
// compares equal to the package sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError builds a DomainError from a code and a human readable
// message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrNotFound reports a lookup that matched no row. Repositories translate
// gorm.ErrRecordNotFound into this before it crosses the domain boundary.
var ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")
