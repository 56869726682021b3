package spreadsheet

// AppErrorCode represents gRPC-style error codes for application-level errors.
// note that we are skipping error codes that don't make sense for our use-case,
// like unauthenticated, or permission denied.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// Unknown error. Errors raised by APIs that do not return enough error
	// information may be converted to this error.
	Unknown AppErrorCode = 2

	// InvalidArgument indicates client specified an invalid argument, such
	// as formula text that does not compile.
	InvalidArgument AppErrorCode = 3

	// FailedPrecondition indicates operation was rejected because the
	// system is not in a state required for the operation's execution, such
	// as a write that would close a reference cycle.
	FailedPrecondition AppErrorCode = 9

	// OutOfRange means operation was attempted past the valid range.
	OutOfRange AppErrorCode = 11
)

// AppError represents errors at the application level (not
// formula errors, which are values)
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches any AppError carrying the same code, so callers can compare
// against the sentinels below regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for the three ways a mutation can be rejected. a rejected
// mutation never changes the sheet.
var (
	ErrInvalidPosition    = NewApplicationError(OutOfRange, "invalid position")
	ErrFormulaSyntax      = NewApplicationError(InvalidArgument, "formula syntax error")
	ErrCircularDependency = NewApplicationError(FailedPrecondition, "circular dependency")
)
