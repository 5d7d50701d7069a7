package server

import (
	"errors"
	"fmt"
)

// ErrorKind classifies operation-level failures that are reported back to the
// originating client rather than terminating the connection.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindPersistence
	KindProtocol
)

type HubError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *HubError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *HubError) Unwrap() error {
	return e.Err
}

func newPersistenceError(msg string, err error) *HubError {
	return &HubError{Kind: KindPersistence, Message: msg, Err: err}
}

func newProtocolError(msg string, err error) *HubError {
	return &HubError{Kind: KindProtocol, Message: msg, Err: err}
}

// KindOf returns the error's kind, or false if the error is not a HubError.
func KindOf(err error) (ErrorKind, bool) {
	var hubErr *HubError
	if errors.As(err, &hubErr) {
		return hubErr.Kind, true
	}
	return 0, false
}
