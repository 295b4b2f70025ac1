package service

import (
	"errors"
	"fmt"

	"github.com/GiveMe1Star/digital-signature/protocol"
)

// An Error describes a failed exchange with the service.
type Error struct {
	// Code is protocol.ErrRejected or protocol.ErrTransport.
	Code protocol.ErrorCode
	// Status is the HTTP status of a rejected request, zero otherwise.
	Status int
	// Detail is the service's detail message, if it sent one.
	Detail string
	// Err is the underlying transport or decoding error.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s (%d): %s", e.Code.Error(), e.Status, e.Detail)
	case e.Err != nil:
		return e.Code.Error() + ": " + e.Err.Error()
	case e.Status != 0:
		return fmt.Sprintf("%s (%d)", e.Code.Error(), e.Status)
	}
	return e.Code.Error()
}

// Is makes errors.Is(err, protocol.ErrRejected) and friends work.
func (e *Error) Is(target error) bool {
	code, ok := target.(protocol.ErrorCode)
	return ok && code == e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DetailOr returns the detail the service sent with err, or fallback if
// err carries none.
func DetailOr(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return fallback
}

func transportError(err error) *Error {
	return &Error{Code: protocol.ErrTransport, Err: err}
}
