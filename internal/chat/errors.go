package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies why a completion call failed.
type ErrorKind int

const (
	KindUnavailable ErrorKind = iota + 1
	KindModelNotFound
	KindTimeout
	KindBadResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindModelNotFound:
		return "model_not_found"
	case KindTimeout:
		return "timeout"
	case KindBadResponse:
		return "bad_response"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A *ServiceError matches the sentinel of its Kind.
var (
	ErrUnavailable   = errors.New("chat service unavailable")
	ErrModelNotFound = errors.New("model not found")
	ErrTimeout       = errors.New("chat request timed out")
	ErrBadResponse   = errors.New("bad response from chat service")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnavailable:
		return ErrUnavailable
	case KindModelNotFound:
		return ErrModelNotFound
	case KindTimeout:
		return ErrTimeout
	case KindBadResponse:
		return ErrBadResponse
	}
	return nil
}

// ServiceError is returned by every backend when a completion call fails.
type ServiceError struct {
	Provider   string
	Model      string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Model != "" {
		msg += fmt.Sprintf(" (model %q)", e.Model)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// transportError classifies an error returned before any HTTP response was read.
func transportError(provider, model string, err error) *ServiceError {
	kind := KindUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &ServiceError{Provider: provider, Model: model, Kind: kind, Err: err}
}

// statusError classifies a non-200 response.
func statusError(provider, model string, status int, msg string) *ServiceError {
	var err error
	if msg != "" {
		err = errors.New(msg)
	}
	return &ServiceError{Provider: provider, Model: model, Kind: kindForStatus(status), StatusCode: status, Err: err}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return KindModelNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status == http.StatusTooManyRequests || status >= 500:
		return KindUnavailable
	default:
		return KindBadResponse
	}
}

func badResponse(provider, model string, err error) *ServiceError {
	return &ServiceError{Provider: provider, Model: model, Kind: KindBadResponse, Err: err}
}
