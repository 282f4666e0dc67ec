package errx

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Type groups codes by the kind of failure, independent of transport.
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeExternal      Type = "EXTERNAL"
	TypeTransient     Type = "TRANSIENT"
	TypeInternal      Type = "INTERNAL"
)

// Code is the closed set of machine-readable error codes exposed by the client.
type Code string

const (
	CodeAPI        Code = "API_ERROR"
	CodeAuth       Code = "AUTH_ERROR"
	CodeValidation Code = "VALIDATION_ERROR"
	CodeTimeout    Code = "TIMEOUT_ERROR"
	CodeRateLimit  Code = "RATE_LIMIT_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeNetwork    Code = "NETWORK_ERROR"
	CodeForbidden  Code = "FORBIDDEN"
	CodeConflict   Code = "CONFLICT"
	CodeServer     Code = "SERVER_ERROR"
)

// FieldError is a single schema violation, addressed by a dotted path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the ApiErrorResponse of the memory client. Every failure that
// leaves the client is one of these.
type Error struct {
	Code       Code           `json:"code"`
	Type       Type           `json:"-"`
	Message    string         `json:"message"`
	StatusCode int            `json:"statusCode,omitempty"`
	Details    map[string]any `json:"-"`
	Fields     []FieldError   `json:"-"`
	RequestID  string         `json:"requestId,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Err        error          `json:"-"`
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Type:      code.Type(),
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to an underlying error.
// Wrapping an *Error keeps its code unless it is the generic API_ERROR.
func Wrap(err error, message string, code Code) *Error {
	var existing *Error
	if errors.As(err, &existing) && existing.Code != CodeAPI {
		code = existing.Code
	}
	e := New(code, message)
	e.Err = err
	if existing != nil {
		e.StatusCode = existing.StatusCode
		e.RequestID = existing.RequestID
		e.Fields = existing.Fields
	}
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on code so callers can write errors.Is(err, errx.New(errx.CodeNotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail records an extra key on the error and returns it for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithField appends a field-level violation.
func (e *Error) WithField(field, message string) *Error {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// WithStatus sets the HTTP status the error was derived from.
func (e *Error) WithStatus(status int) *Error {
	e.StatusCode = status
	return e
}

// WithRequestID sets the request id the error belongs to.
func (e *Error) WithRequestID(id string) *Error {
	e.RequestID = id
	return e
}

// Retryable reports whether the operation that produced e may be retried.
func (e *Error) Retryable() bool {
	return e.Code.Retryable()
}

// Hint returns a short next step for the user, or "" when none applies.
func (e *Error) Hint() string {
	return catalog[e.Code].hint
}

// UserMessage is the short, actionable text shown in front ends.
func (e *Error) UserMessage() string {
	msg := e.Message
	if msg == "" {
		msg = catalog[e.Code].title
	}
	if len(e.Fields) > 0 {
		msg += " ("
		for i, f := range e.Fields {
			if i > 0 {
				msg += "; "
			}
			msg += f.Field + " " + f.Message
		}
		msg += ")"
	}
	if hint := e.Hint(); hint != "" {
		msg += ". " + hint
	}
	return msg
}

type wireError struct {
	Code       Code      `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode,omitempty"`
	Details    any       `json:"details,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// MarshalJSON emits the wire form. Field violations take the details slot
// when present; otherwise the detail map does.
func (e *Error) MarshalJSON() ([]byte, error) {
	w := wireError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		RequestID:  e.RequestID,
		Timestamp:  e.Timestamp,
	}
	switch {
	case len(e.Fields) > 0:
		w.Details = e.Fields
	case len(e.Details) > 0:
		w.Details = e.Details
	}
	return json.Marshal(w)
}
