package zkverify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/retroquest-labs/backend/config"
	"github.com/stretchr/testify/require"
)

func newTestEndpoint(handler http.Handler) (*Endpoint, *httptest.Server) {
	server := httptest.NewServer(handler)
	endpoint := New(config.ZkVerifyConfigs{RelayerURL: server.URL, APIKey: "test-key"})
	return endpoint, server
}

func Test_RegisterVK(t *testing.T) {
	endpoint, server := newTestEndpoint(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/register-vk/test-key", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "groth16", body["proofType"])

			json.NewEncoder(w).Encode(map[string]any{"vkHash": "0xabc"})
		}))
	defer server.Close()

	vkHash, err := endpoint.RegisterVK(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, "0xabc", vkHash)
}

func Test_RegisterVK_AlreadyRegistered(t *testing.T) {
	endpoint, server := newTestEndpoint(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"code":    "REGISTER_VK_FAILED",
				"message": "vk already registered",
				"meta":    map[string]any{"vkHash": "0xcached"},
			})
		}))
	defer server.Close()

	// Redundant registration converges to the same handle.
	vkHash, err := endpoint.RegisterVK(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, "0xcached", vkHash)
}

func Test_RegisterVK_OtherFailure(t *testing.T) {
	endpoint, server := newTestEndpoint(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"code":    "INVALID_API_KEY",
				"message": "invalid api key",
			})
		}))
	defer server.Close()

	_, err := endpoint.RegisterVK(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 401")
}

func Test_SubmitProof(t *testing.T) {
	endpoint, server := newTestEndpoint(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/submit-proof/test-key", r.URL.Path)

			var body struct {
				VkRegistered bool `json:"vkRegistered"`
				ProofData    struct {
					Vk string `json:"vk"`
				} `json:"proofData"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.True(t, body.VkRegistered)
			require.Equal(t, "0xabc", body.ProofData.Vk)

			json.NewEncoder(w).Encode(map[string]any{
				"jobId":            "job-7",
				"optimisticVerify": "success",
			})
		}))
	defer server.Close()

	resp, err := endpoint.SubmitProof(context.Background(), SubmitProofRequest{
		Proof:         json.RawMessage(`{}`),
		PublicSignals: []json.RawMessage{json.RawMessage(`"1"`)},
		VkHash:        "0xabc",
	})
	require.NoError(t, err)
	require.Equal(t, "job-7", resp.JobID)
	require.Equal(t, OptimisticVerifySuccess, resp.OptimisticVerify)
}

func Test_JobStatus(t *testing.T) {
	endpoint, server := newTestEndpoint(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/job-status/test-key/job-7", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"status": "Finalized"})
		}))
	defer server.Close()

	status, err := endpoint.JobStatus(context.Background(), "job-7")
	require.NoError(t, err)
	require.Equal(t, "Finalized", status)
	require.True(t, IsTerminalSuccess(status))
	require.False(t, IsTerminalFailure(status))
}
