package services

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies store failures so that handlers can map them to
// HTTP statuses in one place.
type ErrorKind int

const (
	// KindConnect - the store could not be reached or refused the session
	KindConnect ErrorKind = iota + 1
	// KindQuery - a statement failed on an established connection
	KindQuery
	// KindCanceled - the request context ended before the store answered
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindQuery:
		return "query"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// StoreError is returned by every Store method on failure.
type StoreError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

// Error returns the driver's message unchanged; clients of the sample
// app see it verbatim unless redaction is enabled.
func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Describe is the log-friendly form including operation and kind.
func (e *StoreError) Describe() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

// KindOf reports the kind of a store error, or 0 when err is not one.
func KindOf(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func connectError(ctx context.Context, op string, err error) error {
	return newStoreError(ctx, op, KindConnect, err)
}

func queryError(ctx context.Context, op string, err error) error {
	return newStoreError(ctx, op, KindQuery, err)
}

// newStoreError marks the failure canceled only when the caller's context
// ended; a driver-side connect timeout stays a connect error.
func newStoreError(ctx context.Context, op string, kind ErrorKind, err error) error {
	if ctx.Err() != nil {
		kind = KindCanceled
	}
	return &StoreError{Op: op, Kind: kind, Err: err}
}
