package filedrop

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrRejected is returned when an operation targets an object key
	// outside the managed namespace
	ErrRejected = errors.New("key outside managed namespace")
	// ErrCredential is returned when issuing a presigned URL fails
	ErrCredential = errors.New("credential issue failed")
)
