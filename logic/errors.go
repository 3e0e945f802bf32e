package logic

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package unwraps to one of them,
// so callers can branch with errors.Is(err, ErrNotFound) and friends.
var (
	ErrValidation   = errors.New("validation error")
	ErrAuth         = errors.New("authentication error")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBusinessRule = errors.New("business rule violation")
	ErrInternal     = errors.New("internal error")
)

// Error is a classified failure with a stable machine-readable code.
type Error struct {
	Kind error
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Is matches another *Error by code, so sentinels compare equal to copies
// carrying a more specific message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind error, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrInsufficientBalance = newError(ErrBusinessRule, "insufficient_balance", "insufficient balance")
	ErrAccountForfeited    = newError(ErrBusinessRule, "account_forfeited", "account is forfeited")
	ErrBalanceSuspended    = newError(ErrBusinessRule, "balance_suspended", "balance is locked by a pending dispute")
	ErrContentUnavailable  = newError(ErrBusinessRule, "content_unavailable", "content is not available for playback")
	ErrContentDisputed     = newError(ErrBusinessRule, "content_disputed", "content revenue is held by a pending dispute")
	ErrContentExhausted    = newError(ErrBusinessRule, "content_exhausted", "content pool is exhausted")
	ErrSelfDispute         = newError(ErrBusinessRule, "self_dispute", "cannot dispute your own content")
	ErrAlreadyResolved     = newError(ErrBusinessRule, "already_resolved", "dispute is already resolved")
	ErrDisputeAlreadyOpen  = newError(ErrBusinessRule, "dispute_open", "a dispute is already pending for this content")
	ErrInvalidTransition   = newError(ErrBusinessRule, "invalid_transition", "content is not in a state that allows this change")
	ErrAlreadyExists       = newError(ErrBusinessRule, "already_exists", "email or username already registered")
	ErrAlreadyVerified     = newError(ErrBusinessRule, "already_verified", "content is already verified")
	ErrAuthRequestPending  = newError(ErrBusinessRule, "auth_request_pending", "a verification request is already pending for this content")
	ErrNoAuthRequest       = newError(ErrBusinessRule, "no_auth_request", "content has no pending verification request")
	ErrIdempotencyMismatch = newError(ErrValidation, "idempotency_mismatch", "idempotency key reused with a different request")
	ErrInvalidCredentials  = newError(ErrAuth, "invalid_credentials", "invalid email or password")
)

func validationf(format string, args ...interface{}) error {
	return newError(ErrValidation, "validation", fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return newError(ErrNotFound, "not_found", what+" not found")
}

func forbidden(msg string) error {
	return newError(ErrForbidden, "forbidden", msg)
}

// internal wraps a storage failure; the cause is kept for logging only.
func internal(op string, err error) error {
	return &internalError{op: op, err: err}
}

type internalError struct {
	op  string
	err error
}

func (e *internalError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.err) }

func (e *internalError) Is(target error) bool { return target == ErrInternal }

func (e *internalError) Unwrap() error { return e.err }

// KindOf returns the kind err belongs to, ErrInternal for anything
// unclassified.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrAuth, ErrForbidden, ErrNotFound, ErrBusinessRule} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// Code returns the stable code of a classified error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}
