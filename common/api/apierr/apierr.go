// Package apierr classifies failed log API calls and normalizes the
// heterogeneous error payloads the server returns into one stable shape.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindUnknownServer is any response status without a dedicated kind.
	KindUnknownServer Kind = iota
	// KindTransport means no response was received.
	KindTransport
	// KindRequestSetup means the request could not be built or sent.
	KindRequestSetup
	// KindValidation is an HTTP 400 carrying field or non-field errors.
	KindValidation
	// KindNotFoundEmpty is an HTTP 404 from a list or aggregate endpoint. It is an empty result, not a failure.
	KindNotFoundEmpty
	// KindNotFoundMissing is an HTTP 404 for a single record.
	KindNotFoundMissing
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRequestSetup:
		return "request_setup"
	case KindValidation:
		return "validation"
	case KindNotFoundEmpty:
		return "not_found_empty"
	case KindNotFoundMissing:
		return "not_found_missing"
	default:
		return "unknown_server"
	}
}

// User-facing messages.
const (
	MsgNoResponse      = "No response received from server. Please check your connection."
	MsgNoResults       = "No logs found for the selected criteria."
	MsgNotFoundMissing = "The requested log does not exist or has been deleted."
	MsgUnknown         = "Unknown error occurred"
	MsgGeneric         = "An error occurred"
)

// Error is a failed API call. Message is safe to show to the user; Err keeps
// the lower-level cause for errors.Is/As.
type Error struct {
	Kind      Kind
	Status    int
	Operation string
	Payload   Normalized
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
}

// Unwrap exposes the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// FromResponse builds the error for a non-2xx response. notFound decides how
// a 404 is classified, since that depends on the endpoint.
func FromResponse(op string, status int, body []byte, notFound Kind) *Error {
	payload := Normalize(status, body)

	kind := KindUnknownServer
	switch status {
	case http.StatusBadRequest:
		kind = KindValidation
	case http.StatusNotFound:
		kind = notFound
	}

	msg := payload.UserMessage
	if kind == KindNotFoundMissing {
		msg = MsgNotFoundMissing
	}

	return &Error{
		Kind:      kind,
		Status:    status,
		Operation: op,
		Payload:   payload,
		Message:   msg,
		Err:       fmt.Errorf("HTTP %d", status),
	}
}

// Transport wraps a failure where the server never answered.
func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Operation: op, Message: MsgNoResponse, Err: err}
}

// RequestSetup wraps a failure building the request.
func RequestSetup(op string, err error) *Error {
	return &Error{Kind: KindRequestSetup, Operation: op, Message: "Error: " + err.Error(), Err: err}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknownServer when err is not an API error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknownServer
}

// UserMessage returns the message to show for err, falling back to def for
// errors that did not come from the API client.
func UserMessage(err error, def string) string {
	if e, ok := As(err); ok && e.Message != "" {
		return e.Message
	}
	if err != nil && def == "" {
		return err.Error()
	}
	return def
}
