package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retroquest-labs/backend/internal/domain/proofverify"
	"github.com/retroquest-labs/backend/internal/domain/questutil"
	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/enum"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ClaimDomain interface {
	Submit(ctx context.Context, req *model.SubmitClaimRequest) (*model.SubmitClaimResponse, error)
	Get(ctx context.Context, req *model.GetClaimRequest) (*model.GetClaimResponse, error)
	GetList(ctx context.Context, req *model.GetListClaimRequest) (*model.GetListClaimResponse, error)
	GetPending(ctx context.Context, req *model.GetPendingClaimsRequest) (*model.GetPendingClaimsResponse, error)
	Review(ctx context.Context, req *model.ReviewClaimRequest) (*model.ReviewClaimResponse, error)
	Approve(ctx context.Context, req *model.ApproveClaimRequest) (*model.ApproveClaimResponse, error)
	Reject(ctx context.Context, req *model.RejectClaimRequest) (*model.RejectClaimResponse, error)
	AutoApprove(ctx context.Context, req *model.AutoApproveClaimRequest) (*model.AutoApproveClaimResponse, error)
	Verify(ctx context.Context, req *model.VerifyClaimRequest) (*model.VerifyClaimResponse, error)
	GetUserStats(ctx context.Context, req *model.GetUserClaimStatsRequest) (*model.GetUserClaimStatsResponse, error)
	GetQuestStats(ctx context.Context, req *model.GetQuestClaimStatsRequest) (*model.GetQuestClaimStatsResponse, error)
}

type claimDomain struct {
	claimRepo repository.ClaimRepository
	questRepo repository.QuestRepository
	userRepo  repository.UserRepository
	escrow    EscrowCoordinator
	verifier  proofverify.Verifier
}

func NewClaimDomain(
	claimRepo repository.ClaimRepository,
	questRepo repository.QuestRepository,
	userRepo repository.UserRepository,
	escrow EscrowCoordinator,
	verifier proofverify.Verifier,
) *claimDomain {
	return &claimDomain{
		claimRepo: claimRepo,
		questRepo: questRepo,
		userRepo:  userRepo,
		escrow:    escrow,
		verifier:  verifier,
	}
}

func (d *claimDomain) Submit(
	ctx context.Context, req *model.SubmitClaimRequest,
) (*model.SubmitClaimResponse, error) {
	if req.QuestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require quest id")
	}

	user, err := getOrCreateUserByWallet(ctx, d.userRepo, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != user.Username {
		if err := d.userRepo.UpdateByID(ctx, user.ID, &entity.User{Username: req.Username}); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update username: %v", err)
			return nil, errorx.Unknown
		}
	}

	quest, err := d.questRepo.GetByID(ctx, req.QuestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	// Correct a stale open status before the not-open check so a quest whose
	// expiry passed since the last sweep fails with the right message.
	if quest.Status == entity.QuestOpen && questutil.IsExpired(quest, time.Now()) {
		if err := d.questRepo.UpdateStatusByID(ctx, quest.ID, entity.QuestExpired); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot expire quest: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.Unavailable, "Quest has expired")
	}

	if quest.Status != entity.QuestOpen {
		return nil, errorx.New(errorx.Unavailable, "Quest is not open")
	}

	_, err = d.claimRepo.GetLastPendingOrApproved(ctx, user.ID, quest.ID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "You have already claimed this quest")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check previous claims: %v", err)
		return nil, errorx.Unknown
	}

	claim := &entity.Claim{
		Base:     entity.Base{ID: uuid.NewString()},
		QuestID:  quest.ID,
		UserID:   user.ID,
		ProofURL: req.ProofURL,
		Status:   entity.ClaimPending,
	}
	if err := d.claimRepo.Create(ctx, claim); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create claim: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SubmitClaimResponse{Claim: model.ConvertClaim(claim, false, false)}, nil
}

func (d *claimDomain) Get(
	ctx context.Context, req *model.GetClaimRequest,
) (*model.GetClaimResponse, error) {
	claim, err := d.loadClaim(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetClaimResponse{Claim: model.ConvertClaim(claim, true, true)}, nil
}

func (d *claimDomain) loadClaim(ctx context.Context, id string) (*entity.Claim, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Require claim id")
	}

	claim, err := d.claimRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found claim")
		}

		xcontext.Logger(ctx).Errorf("Cannot get claim: %v", err)
		return nil, errorx.Unknown
	}

	return claim, nil
}

func (d *claimDomain) GetList(
	ctx context.Context, req *model.GetListClaimRequest,
) (*model.GetListClaimResponse, error) {
	cfg := xcontext.Configs(ctx).Quest
	if req.Limit == 0 {
		req.Limit = cfg.DefaultLimit
	}

	if req.Limit < 0 || req.Limit > cfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Limit must be in range [1, %d]", cfg.MaxLimit)
	}

	claims, err := d.claimRepo.GetList(ctx, repository.GetListClaimFilter{
		QuestID: req.QuestID,
		UserID:  req.UserID,
		Offset:  req.Offset,
		Limit:   req.Limit,

		// Reviewers read a quest's claims in submission order.
		OldestFirst: req.QuestID != "",
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claims: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetListClaimResponse{Claims: []model.Claim{}}
	for i := range claims {
		resp.Claims = append(resp.Claims, model.ConvertClaim(&claims[i], true, true))
	}

	return resp, nil
}

func (d *claimDomain) GetPending(
	ctx context.Context, req *model.GetPendingClaimsRequest,
) (*model.GetPendingClaimsResponse, error) {
	cfg := xcontext.Configs(ctx).Quest
	if req.Limit == 0 {
		req.Limit = cfg.DefaultLimit
	}

	if req.Limit < 0 || req.Limit > cfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Limit must be in range [1, %d]", cfg.MaxLimit)
	}

	claims, err := d.claimRepo.GetList(ctx, repository.GetListClaimFilter{
		Status:      []entity.ClaimStatus{entity.ClaimPending},
		Limit:       req.Limit,
		OldestFirst: true,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending claims: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetPendingClaimsResponse{Claims: []model.Claim{}}
	for i := range claims {
		resp.Claims = append(resp.Claims, model.ConvertClaim(&claims[i], true, true))
	}

	return resp, nil
}

type transitionOptions struct {
	skipRewards  bool
	releaseFunds bool
}

// transition moves a pending claim to its final status. Approval with rewards
// also awards XP, completes the quest, and rejects the remaining pending
// siblings of a time-based quest; all of it commits as one unit. The quest row
// lock serializes concurrent approvals, so the losing sibling fails the
// pending check instead of double-paying.
func (d *claimDomain) transition(
	ctx context.Context, claim *entity.Claim, status entity.ClaimStatus, opts transitionOptions,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	quest, err := d.questRepo.GetByIDForUpdate(ctx, claim.QuestID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot lock quest: %v", err)
		return errorx.Unknown
	}

	if err := d.claimRepo.UpdatePendingStatusByID(ctx, claim.ID, status); err != nil {
		if errors.Is(err, repository.ErrClaimNotPending) {
			return errorx.New(errorx.Unavailable, "Claim is not pending")
		}

		xcontext.Logger(ctx).Errorf("Cannot update claim status: %v", err)
		return errorx.Unknown
	}

	if status == entity.ClaimApproved && !opts.skipRewards {
		user, err := d.userRepo.GetByID(ctx, claim.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get claimant: %v", err)
			return errorx.Unknown
		}

		cfg := xcontext.Configs(ctx).Quest
		xp := user.XP + cfg.ApproveXP

		// Level stays at the floor when no level step is configured.
		level := uint64(1)
		if cfg.LevelXP > 0 {
			level = xp/cfg.LevelXP + 1
		}

		if err := d.userRepo.UpdateXPByID(ctx, user.ID, xp, level); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot award xp: %v", err)
			return errorx.Unknown
		}

		if err := d.questRepo.UpdateStatusByID(ctx, quest.ID, entity.QuestCompleted); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot complete quest: %v", err)
			return errorx.Unknown
		}

		if quest.Type == entity.QuestTimeBased {
			if err := d.claimRepo.RejectPendingSiblings(ctx, quest.ID, claim.ID); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot reject sibling claims: %v", err)
				return errorx.Unknown
			}
		}
	}

	if opts.releaseFunds {
		if err := d.questRepo.ReleaseFundsByID(ctx, quest.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot release funds: %v", err)
			return errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	claim.Status = status
	return nil
}

func (d *claimDomain) Review(
	ctx context.Context, req *model.ReviewClaimRequest,
) (*model.ReviewClaimResponse, error) {
	status, err := enum.ToEnum[entity.ClaimStatus](req.Status)
	if err != nil || status == entity.ClaimPending {
		return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
	}

	claim, err := d.loadClaim(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	opts := transitionOptions{skipRewards: req.SkipRewards}
	if err := d.transition(ctx, claim, status, opts); err != nil {
		return nil, err
	}

	return &model.ReviewClaimResponse{Claim: model.ConvertClaim(claim, true, true)}, nil
}

// Approve checks fund eligibility before touching the claim, so a claim of a
// quest that can no longer pay out stays pending unless the reviewer opted
// out of rewards.
func (d *claimDomain) Approve(
	ctx context.Context, req *model.ApproveClaimRequest,
) (*model.ApproveClaimResponse, error) {
	claim, err := d.loadClaim(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	eligible := canReleaseFunds(&claim.Quest)
	if !eligible && !req.SkipRewards {
		return nil, errorx.New(errorx.Unavailable, "Funds cannot be released")
	}

	opts := transitionOptions{skipRewards: req.SkipRewards, releaseFunds: eligible}
	if err := d.transition(ctx, claim, entity.ClaimApproved, opts); err != nil {
		return nil, err
	}

	return &model.ApproveClaimResponse{Claim: model.ConvertClaim(claim, true, true)}, nil
}

func (d *claimDomain) Reject(
	ctx context.Context, req *model.RejectClaimRequest,
) (*model.RejectClaimResponse, error) {
	claim, err := d.loadClaim(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	opts := transitionOptions{skipRewards: true}
	if err := d.transition(ctx, claim, entity.ClaimRejected, opts); err != nil {
		return nil, err
	}

	return &model.RejectClaimResponse{Claim: model.ConvertClaim(claim, true, true)}, nil
}

// AutoApprove is the entry point of the verification pipeline. Unlike the
// manual Approve it commits the approval first and only then decides whether
// an on-chain release is still outstanding, returning the escrow directive
// for the caller to get signed.
func (d *claimDomain) AutoApprove(
	ctx context.Context, req *model.AutoApproveClaimRequest,
) (*model.AutoApproveClaimResponse, error) {
	if req.Verification.JobID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require verification payload")
	}

	claim, err := d.loadClaim(ctx, req.ClaimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != entity.ClaimPending {
		return nil, errorx.New(errorx.Unavailable, "Claim is not pending")
	}

	if err := d.transition(ctx, claim, entity.ClaimApproved, transitionOptions{}); err != nil {
		return nil, err
	}

	quest, err := d.questRepo.GetByID(ctx, claim.QuestID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest after approval: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.AutoApproveClaimResponse{Claim: model.ConvertClaim(claim, false, true)}

	// A deposit that has not been released yet needs a signed on-chain call.
	// The released flag is recorded right away; confirmation of the signed
	// transaction is not awaited.
	if quest.TransactionHash != "" && !quest.FundsReleased {
		action, err := d.escrow.BuildReleaseAction(ctx, quest.ID, claim.User.WalletAddress)
		if err != nil {
			return nil, err
		}

		if err := d.questRepo.ReleaseFundsByID(ctx, quest.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot release funds: %v", err)
			return nil, errorx.Unknown
		}

		quest.FundsReleased = true
		quest.Status = entity.QuestCompleted
		resp.RequiresBlockchainRelease = true
		resp.EscrowAction = action
	}

	questModel := model.ConvertQuest(quest, 0)
	resp.Quest = &questModel
	return resp, nil
}

// Verify runs the proof pipeline for a pending claim. Pipeline failures are
// not returned as errors: the claim is rejected and the response says so,
// whatever the internal failure category was.
func (d *claimDomain) Verify(
	ctx context.Context, req *model.VerifyClaimRequest,
) (*model.VerifyClaimResponse, error) {
	if req.Username == "" {
		return nil, errorx.New(errorx.BadRequest, "Require username")
	}

	if req.Eml == "" {
		return nil, errorx.New(errorx.BadRequest, "Require email artifact")
	}

	claim, err := d.loadClaim(ctx, req.ClaimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != entity.ClaimPending {
		return nil, errorx.New(errorx.Unavailable, "Claim is not pending")
	}

	payload, err := d.verifier.Verify(ctx, []byte(req.Eml), req.Username)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Verification of claim %s failed: %v", claim.ID, err)

		opts := transitionOptions{skipRewards: true}
		if err := d.transition(ctx, claim, entity.ClaimRejected, opts); err != nil {
			return nil, err
		}

		return &model.VerifyClaimResponse{
			Claim:  model.ConvertClaim(claim, false, false),
			Action: "rejected",
		}, nil
	}

	approved, err := d.AutoApprove(ctx, &model.AutoApproveClaimRequest{
		ClaimID:      claim.ID,
		Verification: *payload,
	})
	if err != nil {
		return nil, err
	}

	return &model.VerifyClaimResponse{
		Claim:                     approved.Claim,
		Action:                    "approved",
		RequiresBlockchainRelease: approved.RequiresBlockchainRelease,
		EscrowAction:              approved.EscrowAction,
		Verification:              payload,
	}, nil
}

func (d *claimDomain) GetUserStats(
	ctx context.Context, req *model.GetUserClaimStatsRequest,
) (*model.GetUserClaimStatsResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require user id")
	}

	claims, err := d.claimRepo.GetList(ctx, repository.GetListClaimFilter{
		UserID: req.UserID,
		Limit:  -1,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claims of user: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetUserClaimStatsResponse{}
	for _, claim := range claims {
		resp.Total++
		switch claim.Status {
		case entity.ClaimPending:
			resp.Pending++
		case entity.ClaimApproved:
			resp.Approved++
			resp.TotalRewards += claim.Quest.RewardAmount
		case entity.ClaimRejected:
			resp.Rejected++
		}
	}

	return resp, nil
}

func (d *claimDomain) GetQuestStats(
	ctx context.Context, req *model.GetQuestClaimStatsRequest,
) (*model.GetQuestClaimStatsResponse, error) {
	if req.QuestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require quest id")
	}

	claims, err := d.claimRepo.GetList(ctx, repository.GetListClaimFilter{
		QuestID: req.QuestID,
		Limit:   -1,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claims of quest: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetQuestClaimStatsResponse{}
	for _, claim := range claims {
		resp.Total++
		switch claim.Status {
		case entity.ClaimPending:
			resp.Pending++
		case entity.ClaimApproved:
			resp.Approved++
		case entity.ClaimRejected:
			resp.Rejected++
		}
	}

	return resp, nil
}
