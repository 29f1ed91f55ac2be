package blueprint

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/retroquest-labs/backend/config"
	"github.com/retroquest-labs/backend/pkg/api"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

// Proving job statuses reported by the registry.
const (
	proveStatusDone   = "Done"
	proveStatusFailed = "Failed"
)

const defaultProveAttempts = 24

type registryResolver struct {
	apiGenerator   api.Generator
	localGenerator api.Generator
	proveAttempts  int
	pollInterval   time.Duration
}

// NewRegistryResolver returns a Resolver backed by the blueprint registry at
// cfg.RegistryURL. If cfg.LocalProverURL is set, blueprints resolved by it
// also support local proving.
func NewRegistryResolver(cfg config.ZkVerifyConfigs) *registryResolver {
	r := &registryResolver{
		apiGenerator:  api.NewGenerator(cfg.RegistryURL),
		proveAttempts: cfg.ProveAttempts,
		pollInterval:  cfg.PollInterval.Duration,
	}

	if r.proveAttempts <= 0 {
		r.proveAttempts = defaultProveAttempts
	}

	if r.pollInterval <= 0 {
		r.pollInterval = 5 * time.Second
	}

	if cfg.LocalProverURL != "" {
		r.localGenerator = api.NewGenerator(cfg.LocalProverURL)
	}

	return r
}

func (r *registryResolver) GetBlueprint(ctx context.Context, slug string) (Blueprint, error) {
	resp, err := r.apiGenerator.New("/blueprint/%s", slug).GET(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code >= 300 {
		return nil, fmt.Errorf("failed to resolve blueprint %s: status code %d", slug, resp.Code)
	}

	var body struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	if err := resp.Parse(&body); err != nil {
		return nil, err
	}

	if body.ID == "" {
		return nil, fmt.Errorf("blueprint %s has no id", slug)
	}

	return &registryBlueprint{resolver: r, id: body.ID, slug: slug}, nil
}

type registryBlueprint struct {
	resolver *registryResolver
	id       string
	slug     string
}

func (b *registryBlueprint) Slug() string {
	return b.slug
}

func (b *registryBlueprint) VerificationKey(ctx context.Context) (json.RawMessage, error) {
	resp, err := b.resolver.apiGenerator.New("/blueprint/%s/vkey", b.id).GET(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code >= 300 {
		return nil, fmt.Errorf("failed to get vkey of %s: status code %d", b.slug, resp.Code)
	}

	return json.RawMessage(resp.RawBody), nil
}

func (b *registryBlueprint) NewProver() Prover {
	return &registryProver{blueprint: b}
}

type registryProver struct {
	blueprint *registryBlueprint
}

type proveStatusResponse struct {
	Status        string            `json:"status"`
	Proof         json.RawMessage   `json:"proof"`
	PublicOutputs []json.RawMessage `json:"publicOutputs"`
	Error         string            `json:"error"`
}

func (p *registryProver) ProveRemote(
	ctx context.Context, eml []byte, externalInputs any,
) (Proof, error) {
	r := p.blueprint.resolver
	resp, err := r.apiGenerator.New("/blueprint/%s/prove", p.blueprint.id).
		Body(api.JSON{
			"eml":            base64.StdEncoding.EncodeToString(eml),
			"externalInputs": externalInputs,
		}).
		POST(ctx)
	if err != nil {
		return Proof{}, err
	}

	if resp.Code >= 300 {
		return Proof{}, fmt.Errorf("failed to create proving job: status code %d", resp.Code)
	}

	var job struct {
		ID string `json:"id"`
	}
	if err := resp.Parse(&job); err != nil {
		return Proof{}, err
	}

	return p.pollJob(ctx, job.ID)
}

func (p *registryProver) pollJob(ctx context.Context, jobID string) (Proof, error) {
	r := p.blueprint.resolver
	for attempt := 0; attempt < r.proveAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return Proof{}, ctx.Err()
		case <-time.After(r.pollInterval):
		}

		resp, err := r.apiGenerator.New("/prove/%s", jobID).GET(ctx)
		if err != nil {
			return Proof{}, err
		}

		if resp.Code >= 300 {
			return Proof{}, fmt.Errorf("failed to get proving job status: status code %d", resp.Code)
		}

		var body proveStatusResponse
		if err := resp.Parse(&body); err != nil {
			return Proof{}, err
		}

		switch body.Status {
		case proveStatusDone:
			return Proof{Proof: body.Proof, PublicSignals: body.PublicOutputs}, nil
		case proveStatusFailed:
			return Proof{}, fmt.Errorf("proving job failed: %s", body.Error)
		}

		xcontext.Logger(ctx).Debugf(
			"Proving job %s of %s is %s (attempt %d)",
			jobID, p.blueprint.slug, body.Status, attempt+1)
	}

	return Proof{}, fmt.Errorf("proving job did not finish after %d attempts", r.proveAttempts)
}

func (p *registryProver) ProveLocal(
	ctx context.Context, eml []byte, externalInputs any,
) (Proof, error) {
	r := p.blueprint.resolver
	if r.localGenerator == nil {
		return Proof{}, fmt.Errorf("no local prover is configured")
	}

	resp, err := r.localGenerator.New("/prove").
		Body(api.JSON{
			"blueprint":      p.blueprint.slug,
			"eml":            base64.StdEncoding.EncodeToString(eml),
			"externalInputs": externalInputs,
		}).
		POST(ctx)
	if err != nil {
		return Proof{}, err
	}

	if resp.Code >= 300 {
		return Proof{}, fmt.Errorf("failed to prove locally: status code %d", resp.Code)
	}

	var body proveStatusResponse
	if err := resp.Parse(&body); err != nil {
		return Proof{}, err
	}

	return Proof{Proof: body.Proof, PublicSignals: body.PublicOutputs}, nil
}
