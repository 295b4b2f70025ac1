// Package service is the client of the remote signature service.
//
// Each exported method issues exactly one HTTP request and interprets the
// response. Non-2xx answers are reported as an *Error carrying the
// service's detail message with code protocol.ErrRejected; anything that
// prevents a response from being read or decoded is reported with code
// protocol.ErrTransport. The client never retries.
package service
