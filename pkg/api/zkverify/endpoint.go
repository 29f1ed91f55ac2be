// Package zkverify calls the zkVerify proof relay. The relay registers
// verification keys, optimistically verifies submitted proofs, and exposes
// the settlement status of verification jobs.
package zkverify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retroquest-labs/backend/config"
	"github.com/retroquest-labs/backend/pkg/api"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

const (
	proofType    = "groth16"
	proofLibrary = "snarkjs"
	proofCurve   = "bn128"
)

type IEndpoint interface {
	RegisterVK(ctx context.Context, vk json.RawMessage) (string, error)
	SubmitProof(ctx context.Context, req SubmitProofRequest) (SubmitProofResponse, error)
	JobStatus(ctx context.Context, jobID string) (string, error)
}

type Endpoint struct {
	apiGenerator api.Generator
	apiKey       string
}

func New(cfg config.ZkVerifyConfigs) *Endpoint {
	return &Endpoint{
		apiGenerator: api.NewGenerator(cfg.RelayerURL),
		apiKey:       cfg.APIKey,
	}
}

// RegisterVK registers a verification key and returns its relay handle
// (vkHash). Registering an already known key is not an error, the handle
// embedded in the failure response is returned instead.
func (e *Endpoint) RegisterVK(ctx context.Context, vk json.RawMessage) (string, error) {
	resp, err := e.apiGenerator.New("/register-vk/%s", e.apiKey).
		Body(api.JSON{
			"proofType": proofType,
			"proofOptions": api.JSON{
				"library": proofLibrary,
				"curve":   proofCurve,
			},
			"vk": vk,
		}).
		POST(ctx)
	if err != nil {
		return "", err
	}

	if resp.Code < 300 {
		var body registerVKResponse
		if err := resp.Parse(&body); err != nil {
			return "", err
		}

		if hash := body.vkHash(); hash != "" {
			return hash, nil
		}

		return "", fmt.Errorf("vkHash missing from register-vk response")
	}

	var failure registerVKFailure
	if err := resp.Parse(&failure); err == nil {
		if failure.Code == "REGISTER_VK_FAILED" &&
			strings.Contains(failure.Message, "already registered") &&
			failure.Meta.VkHash != "" {
			return failure.Meta.VkHash, nil
		}
	}

	xcontext.Logger(ctx).Errorf("Cannot register vk: %s", string(resp.RawBody))
	return "", fmt.Errorf("failed to register vk: status code %d", resp.Code)
}

func (e *Endpoint) SubmitProof(
	ctx context.Context, req SubmitProofRequest,
) (SubmitProofResponse, error) {
	resp, err := e.apiGenerator.New("/submit-proof/%s", e.apiKey).
		Body(api.JSON{
			"proofType":    proofType,
			"vkRegistered": true,
			"proofOptions": api.JSON{
				"library": proofLibrary,
				"curve":   proofCurve,
			},
			"proofData": api.JSON{
				"proof":         req.Proof,
				"publicSignals": req.PublicSignals,
				"vk":            req.VkHash,
			},
		}).
		POST(ctx)
	if err != nil {
		return SubmitProofResponse{}, err
	}

	if resp.Code >= 300 {
		xcontext.Logger(ctx).Errorf("Cannot submit proof: %s", string(resp.RawBody))
		return SubmitProofResponse{}, fmt.Errorf("failed to submit proof: status code %d", resp.Code)
	}

	var body SubmitProofResponse
	if err := resp.Parse(&body); err != nil {
		return SubmitProofResponse{}, err
	}

	return body, nil
}

func (e *Endpoint) JobStatus(ctx context.Context, jobID string) (string, error) {
	resp, err := e.apiGenerator.New("/job-status/%s/%s", e.apiKey, jobID).GET(ctx)
	if err != nil {
		return "", err
	}

	if resp.Code >= 300 {
		return "", fmt.Errorf("failed to get job status: status code %d", resp.Code)
	}

	var body jobStatusResponse
	if err := resp.Parse(&body); err != nil {
		return "", err
	}

	return body.Status, nil
}
