package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_First_ShortCircuitOnSuccess(t *testing.T) {
	calls := 0
	result, err := First(context.Background(), "blueprint", []Candidate[string]{
		{
			Name: "v3",
			Run: func(ctx context.Context) (string, error) {
				calls++
				return "", errors.New("not found")
			},
		},
		{
			Name: "v2",
			Run: func(ctx context.Context) (string, error) {
				calls++
				return "vkey-v2", nil
			},
		},
		{
			Name: "v1",
			Run: func(ctx context.Context) (string, error) {
				calls++
				return "vkey-v1", nil
			},
		},
	})

	require.NoError(t, err)
	require.Equal(t, "vkey-v2", result)
	require.Equal(t, 2, calls)
}

func Test_First_ExhaustedKeepsAllReasons(t *testing.T) {
	_, err := First(context.Background(), "blueprint", []Candidate[string]{
		{
			Name: "v3",
			Run: func(ctx context.Context) (string, error) {
				return "", errors.New("not found")
			},
		},
		{
			Name: "v2",
			Run: func(ctx context.Context) (string, error) {
				return "", errors.New("timeout")
			},
		},
	})

	require.Error(t, err)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Reasons, 2)
	require.Contains(t, err.Error(), "v3: not found")
	require.Contains(t, err.Error(), "v2: timeout")
}

func Test_First_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := First(ctx, "prover", []Candidate[string]{
		{
			Name: "remote",
			Run: func(ctx context.Context) (string, error) {
				calls++
				cancel()
				return "", context.Canceled
			},
		},
		{
			Name: "local",
			Run: func(ctx context.Context) (string, error) {
				calls++
				return "proof", nil
			},
		},
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
