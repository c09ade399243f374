package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why market data could not be produced
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindTransient   ErrorKind = "transient"
	KindEmptyResult ErrorKind = "empty_result"
)

// Sentinels matched by errors.Is against a DataUnavailableError of the same kind
var (
	ErrNotFound    = errors.New("symbol not found")
	ErrTransient   = errors.New("market data temporarily unavailable")
	ErrEmptyResult = errors.New("no data in the requested range")
)

// DataUnavailableError reports a failed fetch or an unusable result
type DataUnavailableError struct {
	Kind     ErrorKind
	Provider string
	Symbol   string
	Op       string
	Err      error
}

func (e *DataUnavailableError) Error() string {
	msg := string(e.Kind)
	switch e.Kind {
	case KindNotFound:
		msg = ErrNotFound.Error()
	case KindTransient:
		msg = ErrTransient.Error()
	case KindEmptyResult:
		msg = ErrEmptyResult.Error()
	}

	prefix := e.Op
	if e.Provider != "" {
		prefix = e.Provider + " " + e.Op
	}
	if e.Symbol != "" {
		prefix = fmt.Sprintf("%s %s", prefix, e.Symbol)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *DataUnavailableError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrTransient:
		return e.Kind == KindTransient
	case ErrEmptyResult:
		return e.Kind == KindEmptyResult
	}
	return false
}

// NotFound builds a KindNotFound error
func NotFound(provider, op, symbol string, err error) error {
	return &DataUnavailableError{Kind: KindNotFound, Provider: provider, Op: op, Symbol: symbol, Err: err}
}

// Transient builds a KindTransient error
func Transient(provider, op, symbol string, err error) error {
	return &DataUnavailableError{Kind: KindTransient, Provider: provider, Op: op, Symbol: symbol, Err: err}
}

// EmptyResult builds a KindEmptyResult error
func EmptyResult(provider, op, symbol string, err error) error {
	return &DataUnavailableError{Kind: KindEmptyResult, Provider: provider, Op: op, Symbol: symbol, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are treated as transient.
func KindOf(err error) ErrorKind {
	var dataErr *DataUnavailableError
	if errors.As(err, &dataErr) {
		return dataErr.Kind
	}
	return KindTransient
}

// IsRetryable reports whether retrying the same request may succeed
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == KindTransient
}

// statusKind maps an upstream HTTP status to an error kind
func statusKind(status int) ErrorKind {
	switch {
	case status == 404, status == 400, status == 422:
		return KindNotFound
	default:
		return KindTransient
	}
}
