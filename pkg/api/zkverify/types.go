package zkverify

import "encoding/json"

// Job statuses reported by the relay. Finalized and Aggregated are terminal
// success states, Failed and Rejected terminal failures; anything else means
// the job is still in flight.
const (
	StatusFinalized  = "Finalized"
	StatusAggregated = "Aggregated"
	StatusFailed     = "Failed"
	StatusRejected   = "Rejected"
)

const OptimisticVerifySuccess = "success"

func IsTerminalSuccess(status string) bool {
	return status == StatusFinalized || status == StatusAggregated
}

func IsTerminalFailure(status string) bool {
	return status == StatusFailed || status == StatusRejected
}

type SubmitProofRequest struct {
	Proof         json.RawMessage
	PublicSignals []json.RawMessage
	VkHash        string
}

type SubmitProofResponse struct {
	JobID            string `json:"jobId"`
	OptimisticVerify string `json:"optimisticVerify"`
}

type registerVKResponse struct {
	VkHash string `json:"vkHash"`
	Meta   struct {
		VkHash string `json:"vkHash"`
	} `json:"meta"`
}

func (r registerVKResponse) vkHash() string {
	if r.VkHash != "" {
		return r.VkHash
	}

	return r.Meta.VkHash
}

type registerVKFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Meta    struct {
		VkHash string `json:"vkHash"`
	} `json:"meta"`
}

type jobStatusResponse struct {
	Status string `json:"status"`
}
