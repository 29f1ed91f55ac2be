package blueprint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/retroquest-labs/backend/config"
	"github.com/stretchr/testify/require"
)

func newTestResolver(handler http.Handler) (*registryResolver, *httptest.Server) {
	server := httptest.NewServer(handler)
	resolver := NewRegistryResolver(config.ZkVerifyConfigs{
		RegistryURL:   server.URL,
		ProveAttempts: 3,
		PollInterval:  config.Duration{Duration: time.Millisecond},
	})
	return resolver, server
}

func Test_GetBlueprint(t *testing.T) {
	resolver, server := newTestResolver(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/blueprint/acme/circuit@v1":
				json.NewEncoder(w).Encode(map[string]any{
					"id":   "bp-1",
					"slug": "acme/circuit@v1",
				})
			case "/blueprint/bp-1/vkey":
				w.Write([]byte(`{"protocol":"groth16"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	defer server.Close()

	bp, err := resolver.GetBlueprint(context.Background(), "acme/circuit@v1")
	require.NoError(t, err)
	require.Equal(t, "acme/circuit@v1", bp.Slug())

	vkey, err := bp.VerificationKey(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, `{"protocol":"groth16"}`, string(vkey))

	_, err = resolver.GetBlueprint(context.Background(), "acme/missing@v1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 404")
}

func Test_ProveRemote_PollsUntilDone(t *testing.T) {
	polls := 0
	resolver, server := newTestResolver(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/blueprint/bp-1/prove":
				json.NewEncoder(w).Encode(map[string]any{"id": "proving-7"})
			case "/prove/proving-7":
				polls++
				if polls < 2 {
					json.NewEncoder(w).Encode(map[string]any{"status": "In Progress"})
					return
				}

				json.NewEncoder(w).Encode(map[string]any{
					"status":        "Done",
					"proof":         map[string]any{"pi_a": []string{}},
					"publicOutputs": []string{"1"},
				})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	defer server.Close()

	prover := (&registryBlueprint{resolver: resolver, id: "bp-1", slug: "acme/circuit@v1"}).NewProver()
	proof, err := prover.ProveRemote(context.Background(), []byte("eml"), map[string]any{"username": "octocat"})
	require.NoError(t, err)
	require.Equal(t, 2, polls)
	require.NotEmpty(t, proof.Proof)
	require.Len(t, proof.PublicSignals, 1)
}

func Test_ProveRemote_FailedJob(t *testing.T) {
	resolver, server := newTestResolver(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/blueprint/bp-1/prove":
				json.NewEncoder(w).Encode(map[string]any{"id": "proving-7"})
			case "/prove/proving-7":
				json.NewEncoder(w).Encode(map[string]any{
					"status": "Failed",
					"error":  "witness generation failed",
				})
			}
		}))
	defer server.Close()

	prover := (&registryBlueprint{resolver: resolver, id: "bp-1", slug: "acme/circuit@v1"}).NewProver()
	_, err := prover.ProveRemote(context.Background(), []byte("eml"), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "witness generation failed")
}

func Test_ProveLocal_NotConfigured(t *testing.T) {
	resolver := NewRegistryResolver(config.ZkVerifyConfigs{RegistryURL: "http://registry"})
	prover := (&registryBlueprint{resolver: resolver, id: "bp-1", slug: "acme/circuit@v1"}).NewProver()

	_, err := prover.ProveLocal(context.Background(), []byte("eml"), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no local prover is configured")
}
