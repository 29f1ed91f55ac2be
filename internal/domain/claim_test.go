package domain

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/retroquest-labs/backend/config"
	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/testutil"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	payload *model.VerificationPayload
	err     error
}

func (v stubVerifier) Verify(
	ctx context.Context, eml []byte, username string,
) (*model.VerificationPayload, error) {
	return v.payload, v.err
}

func (v stubVerifier) WaitForFinality(ctx context.Context, jobID string) error {
	return nil
}

func newClaimDomain(verifier stubVerifier) *claimDomain {
	return NewClaimDomain(
		repository.NewClaimRepository(),
		repository.NewQuestRepository(),
		repository.NewUserRepository(),
		NewEscrowCoordinator(),
		verifier,
	)
}

func Test_claimDomain_Submit_DuplicateClaim(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Wallet1)
	d := newClaimDomain(stubVerifier{})

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	first, err := d.Submit(ctx, &model.SubmitClaimRequest{QuestID: quest.ID})
	require.NoError(t, err)
	require.Equal(t, "pending", first.Status)

	_, err = d.Submit(ctx, &model.SubmitClaimRequest{QuestID: quest.ID})
	require.Error(t, err)
	require.Equal(t, "You have already claimed this quest", err.Error())

	// A rejected claim no longer blocks a new submission.
	_, err = d.Reject(ctx, &model.RejectClaimRequest{ID: first.ID})
	require.NoError(t, err)

	_, err = d.Submit(ctx, &model.SubmitClaimRequest{QuestID: quest.ID})
	require.NoError(t, err)
}

func Test_claimDomain_Submit_ExpiredQuest(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Wallet1)
	d := newClaimDomain(stubVerifier{})

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{
		Type:   entity.QuestTimeBased,
		Expiry: sql.NullTime{Valid: true, Time: time.Now().Add(-time.Hour)},
	})
	require.NoError(t, err)

	_, err = d.Submit(ctx, &model.SubmitClaimRequest{QuestID: quest.ID})
	require.Error(t, err)
	require.Equal(t, "Quest has expired", err.Error())

	// The stale open status is corrected on the way.
	stored, err := repository.NewQuestRepository().GetByID(ctx, quest.ID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestExpired, stored.Status)
}

func Test_claimDomain_Approve_AwardsRewards(t *testing.T) {
	ctx := testutil.MockContext()
	d := newClaimDomain(stubVerifier{})

	claim, err := testutil.SampleClaim(ctx, nil)
	require.NoError(t, err)

	resp, err := d.Approve(ctx, &model.ApproveClaimRequest{ID: claim.ID})
	require.NoError(t, err)
	require.Equal(t, "approved", resp.Status)

	claimant, err := repository.NewUserRepository().GetByID(ctx, claim.UserID)
	require.NoError(t, err)
	require.EqualValues(t, 50, claimant.XP)
	require.EqualValues(t, 1, claimant.Level)

	quest, err := repository.NewQuestRepository().GetByID(ctx, claim.QuestID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestCompleted, quest.Status)
	require.True(t, quest.FundsReleased)

	// Approving again must fail cleanly instead of paying twice.
	_, err = d.Approve(ctx, &model.ApproveClaimRequest{ID: claim.ID})
	require.Error(t, err)
	require.Equal(t, "Funds cannot be released", err.Error())
}

func Test_claimDomain_Approve_NonReleasableFunds(t *testing.T) {
	ctx := testutil.MockContext()
	d := newClaimDomain(stubVerifier{})

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{FundsReleased: true})
	require.NoError(t, err)

	claim, err := testutil.SampleClaim(ctx, &entity.Claim{QuestID: quest.ID})
	require.NoError(t, err)

	_, err = d.Approve(ctx, &model.ApproveClaimRequest{ID: claim.ID})
	require.Error(t, err)
	require.Equal(t, "Funds cannot be released", err.Error())

	// Opting out of rewards still allows the approval itself.
	resp, err := d.Approve(ctx, &model.ApproveClaimRequest{ID: claim.ID, SkipRewards: true})
	require.NoError(t, err)
	require.Equal(t, "approved", resp.Status)
}

func Test_claimDomain_Approve_WithoutQuestConfigs(t *testing.T) {
	// An approval must survive a context whose quest tuning was never set.
	ctx := xcontext.WithConfigs(testutil.MockContext(), config.Configs{})
	d := newClaimDomain(stubVerifier{})

	claim, err := testutil.SampleClaim(ctx, nil)
	require.NoError(t, err)

	resp, err := d.Approve(ctx, &model.ApproveClaimRequest{ID: claim.ID})
	require.NoError(t, err)
	require.Equal(t, "approved", resp.Status)

	claimant, err := repository.NewUserRepository().GetByID(ctx, claim.UserID)
	require.NoError(t, err)
	require.EqualValues(t, 1, claimant.Level)
}

func Test_claimDomain_SingleWinner(t *testing.T) {
	ctx := testutil.MockContext()
	d := newClaimDomain(stubVerifier{})

	quest, err := testutil.SampleTimeBasedQuest(ctx, time.Hour)
	require.NoError(t, err)

	c1, err := testutil.SampleClaim(ctx, &entity.Claim{QuestID: quest.ID})
	require.NoError(t, err)
	c2, err := testutil.SampleClaim(ctx, &entity.Claim{QuestID: quest.ID})
	require.NoError(t, err)
	c3, err := testutil.SampleClaim(ctx, &entity.Claim{QuestID: quest.ID})
	require.NoError(t, err)

	_, err = d.Review(ctx, &model.ReviewClaimRequest{ID: c1.ID, Status: "approved"})
	require.NoError(t, err)

	claimRepo := repository.NewClaimRepository()
	for _, sibling := range []string{c2.ID, c3.ID} {
		stored, err := claimRepo.GetByID(ctx, sibling)
		require.NoError(t, err)
		require.Equal(t, entity.ClaimRejected, stored.Status)
	}

	stored, err := repository.NewQuestRepository().GetByID(ctx, quest.ID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestCompleted, stored.Status)

	// The losing sibling cannot be approved afterwards.
	_, err = d.Review(ctx, &model.ReviewClaimRequest{ID: c2.ID, Status: "approved"})
	require.Error(t, err)
	require.Equal(t, "Claim is not pending", err.Error())
}

func Test_claimDomain_AutoApprove_EmitsDirectiveOnce(t *testing.T) {
	ctx := testutil.MockContext()
	d := newClaimDomain(stubVerifier{})

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{TransactionHash: "0xdeposit"})
	require.NoError(t, err)

	c1, err := testutil.SampleClaim(ctx, &entity.Claim{QuestID: quest.ID})
	require.NoError(t, err)
	c2, err := testutil.SampleClaim(ctx, &entity.Claim{QuestID: quest.ID})
	require.NoError(t, err)

	verification := model.VerificationPayload{JobID: "job-1", VkHash: "0xvk"}
	resp, err := d.AutoApprove(ctx, &model.AutoApproveClaimRequest{
		ClaimID:      c1.ID,
		Verification: verification,
	})
	require.NoError(t, err)
	require.True(t, resp.RequiresBlockchainRelease)
	require.NotNil(t, resp.EscrowAction)
	require.Equal(t, "releaseQuestFunds", resp.EscrowAction.FunctionName)
	require.Equal(t, quest.ID, resp.EscrowAction.Args[0])

	claimant, err := repository.NewUserRepository().GetByID(ctx, c1.UserID)
	require.NoError(t, err)
	require.EqualValues(t, 50, claimant.XP)

	// Funds were already released, so a later approval of the remaining
	// pending claim carries no directive.
	resp, err = d.AutoApprove(ctx, &model.AutoApproveClaimRequest{
		ClaimID:      c2.ID,
		Verification: verification,
	})
	require.NoError(t, err)
	require.False(t, resp.RequiresBlockchainRelease)
	require.Nil(t, resp.EscrowAction)

	stored, err := repository.NewQuestRepository().GetByID(ctx, quest.ID)
	require.NoError(t, err)
	require.True(t, stored.FundsReleased)
}

func Test_claimDomain_AutoApprove_NotPending(t *testing.T) {
	ctx := testutil.MockContext()
	d := newClaimDomain(stubVerifier{})

	claim, err := testutil.SampleClaim(ctx, &entity.Claim{Status: entity.ClaimRejected})
	require.NoError(t, err)

	_, err = d.AutoApprove(ctx, &model.AutoApproveClaimRequest{
		ClaimID:      claim.ID,
		Verification: model.VerificationPayload{JobID: "job-1"},
	})
	require.Error(t, err)
	require.Equal(t, "Claim is not pending", err.Error())
}

func Test_claimDomain_Verify_RejectsOnPipelineFailure(t *testing.T) {
	ctx := testutil.MockContext()
	d := newClaimDomain(stubVerifier{err: errors.New("no blueprint candidate resolved")})

	claim, err := testutil.SampleClaim(ctx, nil)
	require.NoError(t, err)

	resp, err := d.Verify(ctx, &model.VerifyClaimRequest{
		ClaimID:  claim.ID,
		Username: "octocat",
		Eml:      "raw eml content",
	})
	require.NoError(t, err)
	require.Equal(t, "rejected", resp.Action)
	require.Nil(t, resp.Verification)

	stored, err := repository.NewClaimRepository().GetByID(ctx, claim.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ClaimRejected, stored.Status)
}

func Test_claimDomain_Verify_ApprovesOnSuccess(t *testing.T) {
	ctx := testutil.MockContext()
	payload := &model.VerificationPayload{JobID: "job-9", VkHash: "0xvk"}
	d := newClaimDomain(stubVerifier{payload: payload})

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{TransactionHash: "0xdeposit"})
	require.NoError(t, err)

	claim, err := testutil.SampleClaim(ctx, &entity.Claim{QuestID: quest.ID})
	require.NoError(t, err)

	resp, err := d.Verify(ctx, &model.VerifyClaimRequest{
		ClaimID:  claim.ID,
		Username: "octocat",
		Eml:      "raw eml content",
	})
	require.NoError(t, err)
	require.Equal(t, "approved", resp.Action)
	require.True(t, resp.RequiresBlockchainRelease)
	require.Equal(t, payload, resp.Verification)
	require.Equal(t, "approved", resp.Claim.Status)
}
