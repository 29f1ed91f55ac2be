// Package proofverify runs the zk-email verification pipeline: resolve a
// circuit blueprint, register its verification key with the relay, generate a
// proof of the asserted identity, and submit it for optimistic verification.
package proofverify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/pkg/api/zkverify"
	"github.com/retroquest-labs/backend/pkg/blueprint"
	"github.com/retroquest-labs/backend/pkg/fallback"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

// Pipeline failure categories. All of them surface to API callers as a plain
// "verification failed," but internal logs and tests need to tell them apart.
var (
	ErrNoBlueprint         = errors.New("no blueprint candidate resolved")
	ErrGenerationExhausted = errors.New("proof generation exhausted")
	ErrRelay               = errors.New("proof relay request failed")
	ErrOptimisticRejected  = errors.New("proof rejected by optimistic verification")
)

const defaultJobStatusAttempts = 20

type Verifier interface {
	Verify(ctx context.Context, eml []byte, username string) (*model.VerificationPayload, error)
	WaitForFinality(ctx context.Context, jobID string) error
}

type zkEmailVerifier struct {
	resolver blueprint.Resolver
	relay    zkverify.IEndpoint
	keyStore KeyStore
}

func NewZkEmailVerifier(
	resolver blueprint.Resolver,
	relay zkverify.IEndpoint,
	keyStore KeyStore,
) *zkEmailVerifier {
	return &zkEmailVerifier{
		resolver: resolver,
		relay:    relay,
		keyStore: keyStore,
	}
}

type resolvedBlueprint struct {
	blueprint blueprint.Blueprint
	vkey      []byte
}

func (v *zkEmailVerifier) Verify(
	ctx context.Context, eml []byte, username string,
) (*model.VerificationPayload, error) {
	resolved, err := v.resolveBlueprint(ctx)
	if err != nil {
		return nil, err
	}

	vkHash, err := v.registerVK(ctx, resolved)
	if err != nil {
		return nil, err
	}

	proof, err := v.generateProof(ctx, resolved.blueprint, eml, username)
	if err != nil {
		return nil, err
	}

	resp, err := v.relay.SubmitProof(ctx, zkverify.SubmitProofRequest{
		Proof:         proof.Proof,
		PublicSignals: proof.PublicSignals,
		VkHash:        vkHash,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelay, err)
	}

	if resp.OptimisticVerify != zkverify.OptimisticVerifySuccess {
		return nil, fmt.Errorf("%w: optimisticVerify=%s", ErrOptimisticRejected, resp.OptimisticVerify)
	}

	xcontext.Logger(ctx).Infof(
		"Proof of %s verified optimistically with %s (job %s)",
		username, resolved.blueprint.Slug(), resp.JobID)

	return &model.VerificationPayload{
		JobID:         resp.JobID,
		Proof:         proof.Proof,
		PublicSignals: proof.PublicSignals,
		VkHash:        vkHash,
	}, nil
}

// resolveBlueprint tries every candidate slug in order, operator-configured
// ones first, then the built-in defaults.
func (v *zkEmailVerifier) resolveBlueprint(ctx context.Context) (resolvedBlueprint, error) {
	cfg := xcontext.Configs(ctx).ZkVerify

	var slugs []string
	slugs = append(slugs, cfg.Blueprints...)
	slugs = append(slugs, blueprint.DefaultSlugs...)

	var candidates []fallback.Candidate[resolvedBlueprint]
	for _, slug := range slugs {
		slug := slug
		candidates = append(candidates, fallback.Candidate[resolvedBlueprint]{
			Name: slug,
			Run: func(ctx context.Context) (resolvedBlueprint, error) {
				bp, err := v.resolver.GetBlueprint(ctx, slug)
				if err != nil {
					return resolvedBlueprint{}, err
				}

				vkey, err := bp.VerificationKey(ctx)
				if err != nil {
					return resolvedBlueprint{}, err
				}

				return resolvedBlueprint{blueprint: bp, vkey: vkey}, nil
			},
		})
	}

	resolved, err := fallback.First(ctx, "blueprint", candidates)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve any blueprint: %v", err)
		return resolvedBlueprint{}, fmt.Errorf("%w: %v", ErrNoBlueprint, err)
	}

	return resolved, nil
}

func (v *zkEmailVerifier) registerVK(ctx context.Context, resolved resolvedBlueprint) (string, error) {
	slug := resolved.blueprint.Slug()
	if vkHash, ok := v.keyStore.Get(slug); ok {
		return vkHash, nil
	}

	vkHash, err := v.relay.RegisterVK(ctx, resolved.vkey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRelay, err)
	}

	v.keyStore.Set(slug, vkHash)
	return vkHash, nil
}

type namedShape struct {
	name   string
	inputs any
}

// externalInputShapes are the accepted encodings of the asserted identity.
// Which one a given blueprint version expects is not discoverable up front, so
// proving tries them all in a fixed order.
func externalInputShapes(username string) []namedShape {
	return []namedShape{
		{"plain-map", map[string]any{"username": username}},
		{"typed-list", []map[string]any{
			{"name": "username", "value": username, "maxLength": 64},
		}},
		{"descriptor-array", []map[string]string{
			{"name": "username", "value": username},
		}},
	}
}

// generateProof attempts remote proving with every input shape, then local
// proving with every shape, and fails only when the whole chain is exhausted.
func (v *zkEmailVerifier) generateProof(
	ctx context.Context, bp blueprint.Blueprint, eml []byte, username string,
) (blueprint.Proof, error) {
	prover := bp.NewProver()
	shapes := externalInputShapes(username)

	var candidates []fallback.Candidate[blueprint.Proof]
	for _, shape := range shapes {
		shape := shape
		candidates = append(candidates, fallback.Candidate[blueprint.Proof]{
			Name: "remote/" + shape.name,
			Run: func(ctx context.Context) (blueprint.Proof, error) {
				return prover.ProveRemote(ctx, eml, shape.inputs)
			},
		})
	}

	for _, shape := range shapes {
		shape := shape
		candidates = append(candidates, fallback.Candidate[blueprint.Proof]{
			Name: "local/" + shape.name,
			Run: func(ctx context.Context) (blueprint.Proof, error) {
				return prover.ProveLocal(ctx, eml, shape.inputs)
			},
		})
	}

	proof, err := fallback.First(ctx, "proof generation", candidates)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate proof with %s: %v", bp.Slug(), err)
		return blueprint.Proof{}, fmt.Errorf("%w: %v", ErrGenerationExhausted, err)
	}

	return proof, nil
}

// WaitForFinality polls the relay until the job settles. The optimistic
// verdict is what gates approval; this exists for callers that want to block
// until the proof is actually finalized or aggregated on zkVerify.
func (v *zkEmailVerifier) WaitForFinality(ctx context.Context, jobID string) error {
	cfg := xcontext.Configs(ctx).ZkVerify
	attempts := cfg.JobStatusAttempts
	if attempts <= 0 {
		attempts = defaultJobStatusAttempts
	}

	interval := cfg.PollInterval.Duration
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		status, err := v.relay.JobStatus(ctx, jobID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRelay, err)
		}

		if zkverify.IsTerminalSuccess(status) {
			return nil
		}

		if zkverify.IsTerminalFailure(status) {
			return fmt.Errorf("%w: job %s ended with status %s", ErrRelay, jobID, status)
		}

		xcontext.Logger(ctx).Debugf("Job %s is %s (attempt %d)", jobID, status, attempt+1)
	}

	return fmt.Errorf("%w: job %s did not settle after %d attempts", ErrRelay, jobID, attempts)
}
