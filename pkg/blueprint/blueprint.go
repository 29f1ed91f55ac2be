// Package blueprint resolves compiled zk-email circuit blueprints from a
// registry and generates proofs against them, either through the registry's
// hosted prover or through a self-hosted local one.
package blueprint

import (
	"context"
	"encoding/json"
)

// DefaultSlugs are the built-in blueprint candidates, newest first. They are
// tried after any operator-configured candidates.
var DefaultSlugs = []string{
	"chandrabosep/retro_github@v3",
	"chandrabosep/retro_github@v2",
	"chandrabosep/retro_github@v1",
}

type Proof struct {
	Proof         json.RawMessage
	PublicSignals []json.RawMessage
}

type Prover interface {
	// ProveRemote creates a proving job on the registry's hosted prover and
	// polls it until it reaches a terminal state or attempts run out.
	ProveRemote(ctx context.Context, eml []byte, externalInputs any) (Proof, error)

	// ProveLocal proves through the self-hosted prover in a single call.
	ProveLocal(ctx context.Context, eml []byte, externalInputs any) (Proof, error)
}

type Blueprint interface {
	Slug() string
	VerificationKey(ctx context.Context) (json.RawMessage, error)
	NewProver() Prover
}

type Resolver interface {
	GetBlueprint(ctx context.Context, slug string) (Blueprint, error)
}
