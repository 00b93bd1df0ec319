package core

import (
	"errors"
	"fmt"
)

var ErrNoHandlers = errors.New("no handlers registered")

// ConfigurationError is a programming or registration defect,
// the processor must not be used.
type ConfigurationError struct {
	Processor string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("processor %v misconfigured: %v", e.Processor, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// HandlerError is a fault raised inside a handler.
type HandlerError struct {
	Processor string
	Handler   string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("processor %v handler %v failed: %v", e.Processor, e.Handler, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
