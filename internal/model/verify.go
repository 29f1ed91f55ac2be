package model

import "encoding/json"

// VerificationPayload is the proof bundle produced by a successful run of the
// verification pipeline. It is handed to the claim auto-approval path.
type VerificationPayload struct {
	JobID         string            `json:"job_id"`
	Proof         json.RawMessage   `json:"proof"`
	PublicSignals []json.RawMessage `json:"public_signals"`
	VkHash        string            `json:"vk_hash"`
}

// EscrowAction is the on-chain call directive an external wallet must sign to
// actually move the escrowed funds.
type EscrowAction struct {
	ContractAddress string   `json:"contract_address"`
	FunctionName    string   `json:"function_name"`
	Args            []string `json:"args"`
}

type VerifyClaimRequest struct {
	ClaimID  string `json:"claim_id"`
	Username string `json:"username"`
	Eml      string `json:"eml"`
}

type VerifyClaimResponse struct {
	Claim  Claim  `json:"claim"`
	Action string `json:"action"`

	RequiresBlockchainRelease bool                 `json:"requires_blockchain_release"`
	EscrowAction              *EscrowAction        `json:"escrow_action,omitempty"`
	Verification              *VerificationPayload `json:"verification,omitempty"`
}

type AutoApproveClaimRequest struct {
	ClaimID string `json:"claim_id"`

	Verification VerificationPayload `json:"verification"`
}

type AutoApproveClaimResponse struct {
	Claim Claim  `json:"claim"`
	Quest *Quest `json:"quest,omitempty"`

	RequiresBlockchainRelease bool          `json:"requires_blockchain_release"`
	EscrowAction              *EscrowAction `json:"escrow_action,omitempty"`
}
