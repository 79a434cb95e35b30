package supabase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// PostgreSQL error codes surfaced by PostgREST response bodies.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Error implements repositories.RepositoryError for store backed repositories.
type Error struct {
	op          string
	err         error
	status      int
	code        string
	notFound    bool
	conflict    bool
	unavailable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsNotFound reports whether the error represents a missing row.
func (e *Error) IsNotFound() bool {
	return e != nil && e.notFound
}

// IsConflict reports whether the error represents a constraint violation.
func (e *Error) IsConflict() bool {
	return e != nil && e.conflict
}

// IsUnavailable reports whether the error represents a transient store outage.
func (e *Error) IsUnavailable() bool {
	return e != nil && e.unavailable
}

// StatusCode returns the HTTP status reported by the store, if any.
func (e *Error) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.status
}

// NotFound builds a not-found error for queries that matched no rows.
func NotFound(op, message string) *Error {
	return &Error{op: op, err: errors.New(message), notFound: true}
}

func newStatusError(op string, status int, code, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	e := &Error{
		op:     op,
		err:    fmt.Errorf("store responded %d: %s", status, message),
		status: status,
		code:   code,
	}

	switch {
	case status == http.StatusNotFound || status == http.StatusNotAcceptable:
		// PostgREST reports 406 when a single-object request matches no rows.
		e.notFound = true
	case status == http.StatusConflict:
		e.conflict = true
	case status >= http.StatusInternalServerError:
		e.unavailable = true
	case status == http.StatusTooManyRequests:
		e.unavailable = true
	}

	switch code {
	case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
		e.conflict = true
	}
	return e
}

func newTransportError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	e := &Error{op: op, err: err}
	var netErr net.Error
	if errors.As(err, &netErr) || strings.Contains(err.Error(), "connection refused") {
		e.unavailable = true
	}
	return e
}

// WrapError annotates store errors with repository semantics. Context cancellations are passed through.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		if op != "" && storeErr.op == "" {
			storeErr.op = op
		}
		return storeErr
	}
	return newTransportError(op, err)
}
