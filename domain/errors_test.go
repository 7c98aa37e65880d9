package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"sentinel", ErrTaskNotFound, ErrCodeNotFound},
		{"wrapped sentinel", fmt.Errorf("load: %w", ErrProjectExists), ErrCodeConflict},
		{"wrapped cause", WrapError(ErrCodeInvalid, "invalid url", errors.New("parse")), ErrCodeInvalid},
		{"plain", errors.New("connection refused"), ErrCodeInternal},
		{"deadline", context.DeadlineExceeded, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.want {
				t.Fatalf("CodeOf = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(errors.New("connection refused")) {
		t.Fatalf("driver errors must be transient")
	}
	if IsTransient(ErrTaskExists) || IsTransient(ErrUnauthorized) {
		t.Fatalf("domain errors must not be transient")
	}
	if IsTransient(context.Canceled) || IsTransient(nil) {
		t.Fatalf("cancellation and nil must not be transient")
	}
	if IsDomainError(nil, ErrCodeInternal) {
		t.Fatalf("nil is not a domain error")
	}
}
