package logic

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
		code string
	}{
		{ErrInsufficientBalance, ErrBusinessRule, "insufficient_balance"},
		{fmt.Errorf("wrapped: %w", ErrContentExhausted), ErrBusinessRule, "content_exhausted"},
		{ErrIdempotencyMismatch, ErrValidation, "idempotency_mismatch"},
		{validationf("bad %s", "input"), ErrValidation, "validation"},
		{notFound("content"), ErrNotFound, "not_found"},
		{ErrInvalidCredentials, ErrAuth, "invalid_credentials"},
		{internal("save", errors.New("disk full")), ErrInternal, "internal"},
		{errors.New("anything"), ErrInternal, "internal"},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.kind)
		}
		if got := Code(tt.err); got != tt.code {
			t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.code)
		}
	}
	if !errors.Is(internal("x", errors.New("y")), ErrInternal) {
		t.Error("internal error does not match ErrInternal")
	}
	if errors.Is(ErrSelfDispute, ErrAlreadyResolved) {
		t.Error("distinct sentinels compare equal")
	}
}

func TestFingerprintStable(t *testing.T) {
	a, err := fingerprint(uint64(1), 10, true)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := fingerprint(uint64(1), 10, true)
	c, _ := fingerprint(uint64(1), 10, false)
	if a != b || a == c {
		t.Fatalf("fingerprints: %s %s %s", a, b, c)
	}
	if len(a) > 64 {
		t.Fatalf("fingerprint too long for storage: %d", len(a))
	}
}
