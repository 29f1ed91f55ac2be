package errorx

import "fmt"

type Code uint64

type Error struct {
	Code    Code
	Message string
}

// Unknown is returned to clients whenever an internal failure should not leak
// its details. The real cause must be logged before returning it.
var Unknown = Error{Code: 100000, Message: "Request failed"}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}
