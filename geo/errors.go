package geo

import "fmt"

// UserError reports a problem with caller-supplied input: a malformed
// descriptor, an out-of-range coordinate, a query shape the planner cannot
// satisfy. It is never returned for internal inconsistencies.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string {
	return e.Msg
}

func newUserError(format string, args ...interface{}) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}
