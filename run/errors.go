package run

import "errors"

// Error is a terminal failure reported by the backend on the stream.
// Distinct from transport failures: the connection succeeded but the run
// itself errored.
type Error struct {
	// Message is the server-supplied failure text.
	Message string
}

// genericRunError is used when an error event carries no content field.
const genericRunError = "run failed without a reported message"

func (e *Error) Error() string {
	return e.Message
}

// IsRunError returns true if err is a backend-reported run error.
func IsRunError(err error) bool {
	var runErr *Error
	return errors.As(err, &runErr)
}
