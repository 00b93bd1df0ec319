package rpc

import "errors"

var (
	NotFoundErr *NotFoundError
	ConflictErr *ConflictError
)

var ErrNotFound = errors.New("Not found")

type NotFoundError struct{ Err error }

func (e *NotFoundError) Error() string { return e.Err.Error() }
func (e *NotFoundError) Unwrap() error { return e.Err }

type ConflictError struct{ Err error }

func (e *ConflictError) Error() string { return e.Err.Error() }
func (e *ConflictError) Unwrap() error { return e.Err }

// RemoteError is an exception reported by a remote method.
type RemoteError struct{ Message string }

func (e *RemoteError) Error() string { return "remote exception: " + e.Message }
