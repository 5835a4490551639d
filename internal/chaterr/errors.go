// Package chaterr defines the error taxonomy shared by the stores, the
// gateway, and the engine.
//
// Kinds:
//   - ErrValidation, ErrNotFound, ErrDuplicate, ErrBusy: local, resolved at
//     the store/engine boundary, never produced by a network exchange.
//   - ErrTransport: network or timeout failure; safe to retry.
//   - ErrProvider: the backend returned a structured failure; retry only when
//     the provider signals rate limiting.
//   - ErrProtocol: the response did not match the expected shape.
package chaterr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
	ErrBusy       = errors.New("session busy")
	ErrTransport  = errors.New("transport failure")
	ErrProvider   = errors.New("provider failure")
	ErrProtocol   = errors.New("unexpected provider response")
)

// ProviderError carries the structured failure a model backend returned.
type ProviderError struct {
	Status      int
	Code        string
	Message     string
	RateLimited bool
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrProvider }

// NewValidation returns an ErrValidation with a caller-facing message.
func NewValidation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NewNotFound identifies the missing record kind and id.
func NewNotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// NewDuplicate identifies the colliding record kind and id.
func NewDuplicate(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrDuplicate, kind, id)
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsDuplicate(err error) bool  { return errors.Is(err, ErrDuplicate) }
func IsBusy(err error) bool       { return errors.Is(err, ErrBusy) }

// Retryable reports whether the caller may reasonably retry: transport
// failures always, provider failures only on an explicit rate-limit signal.
func Retryable(err error) bool {
	if errors.Is(err, ErrTransport) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.RateLimited
	}
	return false
}
