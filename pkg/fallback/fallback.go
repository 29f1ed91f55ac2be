// Package fallback runs a list of candidates in order and returns the first
// successful result. It is used wherever the system has several ways to get
// the same thing (multiple blueprint versions, multiple proof input shapes,
// remote then local proving) and must only fail after all of them failed.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Candidate is one way to produce a T. The name is kept for error reporting.
type Candidate[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// ExhaustedError is returned when every candidate failed. It keeps the
// per-candidate reasons so the caller can log them all.
type ExhaustedError struct {
	What    string
	Reasons []error
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %s candidates failed", e.What)
	for _, reason := range e.Reasons {
		b.WriteString("; ")
		b.WriteString(reason.Error())
	}

	return b.String()
}

func (e *ExhaustedError) Unwrap() []error {
	return e.Reasons
}

// First tries each candidate in order and short-circuits on the first
// success. Context cancellation stops the cascade immediately.
func First[T any](ctx context.Context, what string, candidates []Candidate[T]) (T, error) {
	var zero T
	if len(candidates) == 0 {
		return zero, &ExhaustedError{What: what}
	}

	var reasons []error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := candidate.Run(ctx)
		if err == nil {
			return result, nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}

		reasons = append(reasons, fmt.Errorf("%s: %w", candidate.Name, err))
	}

	return zero, &ExhaustedError{What: what, Reasons: reasons}
}
