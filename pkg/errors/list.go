package errors

import (
	"errors"
	"strings"
)

// https://pkg.go.dev/go/scanner#ErrorList
type Errorlist []error

func (e Errorlist) Error() string {
	var errs []string
	for _, v := range e {
		errs = append(errs, v.Error())
	}
	return strings.Join(errs, "; ")
}

// Unwrap lets errors.Is and errors.As look into every collected error.
func (e Errorlist) Unwrap() []error {
	return e
}

// ErrOrNil returns nil for an empty list, so a list can be returned as a plain error.
func (e Errorlist) ErrOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsType reports whether any error in err's tree is of type E.
func AsType[E error](err error) bool {
	var target E
	return errors.As(err, &target)
}
