// Defines constants representing the reasons a client
// workflow can end without a successful result.

package protocol

// An ErrorCode classifies why a workflow did not complete.
// ErrorCode implements the error interface so it can be
// compared with errors.Is.
type ErrorCode int

const (
	// ErrInputIncomplete means a required artifact or field is missing.
	// It is caught before any request is issued.
	ErrInputIncomplete ErrorCode = iota + 10
	// ErrRejected means the service answered with a non-2xx status.
	ErrRejected
	// ErrTransport means the request could not be delivered or the
	// response could not be decoded.
	ErrTransport
	// ErrDeclined means the operator refused a confirmation gate.
	ErrDeclined
)

var errorMessages = map[ErrorCode]string{
	ErrInputIncomplete: "[signature] Required input is missing",
	ErrRejected:        "[signature] Request rejected by the service",
	ErrTransport:       "[signature] Service unreachable or response malformed",
	ErrDeclined:        "[signature] Action declined",
}

// Error returns the message associated with e.
func (e ErrorCode) Error() string {
	msg, ok := errorMessages[e]
	if !ok {
		return errorMessages[ErrTransport]
	}
	return msg
}
