package errors

import (
	"net/http"
)

// Kind classifies an error for the panel client: it decides both the HTTP
// status and how the UI is expected to surface the failure.
type Kind string

const (
	KindUnauthenticated     Kind = "unauthenticated"
	KindValidationFailed    Kind = "validation_failed"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindServerRejected      Kind = "server_rejected"
	KindNetworkUnavailable  Kind = "network_unavailable"
	KindInternal            Kind = "internal"
)

type ResponseCodeError struct {
	err   error
	msg   string
	code  int
	kind  Kind
	field string
}

func New(err error, msg string) error {
	return ResponseCodeError{err: err, msg: msg, code: http.StatusInternalServerError, kind: KindInternal}
}

func NewWithCode(err error, msg string, code int) error {
	return ResponseCodeError{err: err, msg: msg, code: code, kind: KindInternal}
}

func Unauthenticated(err error, msg string) error {
	return ResponseCodeError{err: err, msg: msg, code: http.StatusUnauthorized, kind: KindUnauthenticated}
}

// ValidationFailed carries the offending field name so the UI can render the
// message inline next to it. Validation errors never reach the network.
func ValidationFailed(err error, field, msg string) error {
	return ResponseCodeError{err: err, msg: msg, code: http.StatusUnprocessableEntity, kind: KindValidationFailed, field: field}
}

func InsufficientBalance(err error, msg string) error {
	return ResponseCodeError{err: err, msg: msg, code: http.StatusPaymentRequired, kind: KindInsufficientBalance}
}

// ServerRejected wraps a backend rejection, keeping the backend's own message
// verbatim so it can be surfaced to the user unchanged.
func ServerRejected(err error, msg string) error {
	return ResponseCodeError{err: err, msg: msg, code: http.StatusBadGateway, kind: KindServerRejected}
}

func NetworkUnavailable(err error, msg string) error {
	return ResponseCodeError{err: err, msg: msg, code: http.StatusServiceUnavailable, kind: KindNetworkUnavailable}
}

func (rce ResponseCodeError) Error() string {
	return rce.err.Error()
}
func (rce ResponseCodeError) Msg() string {
	return rce.msg
}
func (rce ResponseCodeError) Code() int {
	return rce.code
}
func (rce ResponseCodeError) Kind() Kind {
	return rce.kind
}
func (rce ResponseCodeError) Field() string {
	return rce.field
}
func (rce ResponseCodeError) Unwrap() error {
	return rce.err
}
