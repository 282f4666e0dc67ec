package errx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
)

type codeInfo struct {
	typ       Type
	title     string
	hint      string
	retryable bool
}

var catalog = map[Code]codeInfo{
	CodeAPI:        {TypeExternal, "The memory service returned an unexpected response", "", false},
	CodeAuth:       {TypeAuthorization, "Authentication failed", "Please re-authenticate or check your API key", false},
	CodeValidation: {TypeValidation, "The request is invalid", "", false},
	CodeTimeout:    {TypeTransient, "The request timed out", "Try again in a moment", true},
	CodeRateLimit:  {TypeTransient, "Too many requests", "Wait a little before trying again", true},
	CodeNotFound:   {TypeNotFound, "Not found", "The resource may have been deleted", false},
	CodeNetwork:    {TypeTransient, "Could not reach the memory service", "Check your connection and the API URL", true},
	CodeForbidden:  {TypeAuthorization, "You do not have access to this resource", "Check the project scope or your permissions", false},
	CodeConflict:   {TypeConflict, "The resource was changed by someone else", "Reload it and retry", false},
	CodeServer:     {TypeTransient, "The memory service failed", "Try again later", true},
}

// Codes returns every code in the closed enumeration.
func Codes() []Code {
	return []Code{
		CodeAPI, CodeAuth, CodeValidation, CodeTimeout, CodeRateLimit,
		CodeNotFound, CodeNetwork, CodeForbidden, CodeConflict, CodeServer,
	}
}

// Valid reports whether c belongs to the closed enumeration.
func (c Code) Valid() bool {
	_, ok := catalog[c]
	return ok
}

// Type returns the failure kind for c.
func (c Code) Type() Type {
	if info, ok := catalog[c]; ok {
		return info.typ
	}
	return TypeInternal
}

// Retryable reports whether failures with this code are transient.
func (c Code) Retryable() bool {
	return catalog[c].retryable
}

// StatusToCode maps an HTTP status to a code. Status 0 means no response was
// received at all.
func StatusToCode(status int) Code {
	switch {
	case status == 0:
		return CodeNetwork
	case status == http.StatusBadRequest:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeAuth
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusRequestTimeout:
		return CodeTimeout
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimit
	case status >= 500 && status <= 599:
		return CodeServer
	default:
		return CodeAPI
	}
}

// FromStatus builds an error for an HTTP response status.
func FromStatus(status int, message string) *Error {
	code := StatusToCode(status)
	if message == "" {
		message = catalog[code].title
	}
	return New(code, message).WithStatus(status)
}

// Validation builds a VALIDATION_ERROR carrying field violations.
func Validation(message string, fields ...FieldError) *Error {
	e := New(CodeValidation, message)
	e.Fields = fields
	return e
}

// From normalizes any error into an *Error. It never returns nil for a
// non-nil input.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, "request timed out", CodeTimeout)
	case errors.Is(err, context.Canceled):
		return Wrap(err, "request cancelled", CodeAPI)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(err, "request timed out", CodeTimeout)
		}
		return Wrap(err, "network failure", CodeNetwork)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Wrap(err, "network failure", CodeNetwork)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Wrap(err, "network failure", CodeNetwork)
	}
	return Wrap(err, err.Error(), CodeAPI)
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return From(err).Code
}
