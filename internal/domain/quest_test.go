package domain

import (
	"database/sql"
	"testing"
	"time"

	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newQuestDomain() *questDomain {
	return NewQuestDomain(
		repository.NewQuestRepository(),
		repository.NewUserRepository(),
		repository.NewTagRepository(),
	)
}

func Test_questDomain_Create_InvalidRequests(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Wallet1)
	d := newQuestDomain()

	base := model.CreateQuestRequest{
		Title:         "Fix the flaky pipeline",
		Description:   "See the linked issue",
		Type:          "regular",
		RewardAmount:  1,
		SuppliedFunds: 1,
		Tags:          []string{"backend"},
	}

	req := base
	req.Title = ""
	_, err := d.Create(ctx, &req)
	require.Error(t, err)
	require.Equal(t, "Require title", err.Error())

	req = base
	req.Type = "daily"
	_, err = d.Create(ctx, &req)
	require.Error(t, err)
	require.Equal(t, "Invalid quest type daily", err.Error())

	req = base
	req.RewardAmount = 1
	req.SuppliedFunds = 0.5
	_, err = d.Create(ctx, &req)
	require.Error(t, err)
	require.Equal(t, "Supplied funds must cover the reward amount", err.Error())

	past := time.Now().Add(-time.Hour)
	req = base
	req.Type = "time_based"
	req.Expiry = &past
	_, err = d.Create(ctx, &req)
	require.Error(t, err)
	require.Equal(t, "Expiry must be in the future", err.Error())

	req = base
	req.Type = "time_based"
	req.Expiry = nil
	_, err = d.Create(ctx, &req)
	require.Error(t, err)
	require.Equal(t, "Require expiry for time-based quest", err.Error())

	req = base
	req.Tags = []string{"a"}
	_, err = d.Create(ctx, &req)
	require.Error(t, err)
	require.Equal(t, `Tag "a" is too short (minimum 2 characters)`, err.Error())

	// Every violated rule shows up in one response.
	req = base
	req.Title = ""
	req.RewardAmount = 0
	req.SuppliedFunds = 0
	req.Tags = []string{"a"}
	_, err = d.Create(ctx, &req)
	require.Error(t, err)
	require.Equal(t,
		`Require title; Reward amount must be positive; Tag "a" is too short (minimum 2 characters)`,
		err.Error())
}

func Test_questDomain_Create_NormalizesTagsAndCreatesCreator(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Wallet1)
	d := newQuestDomain()

	resp, err := d.Create(ctx, &model.CreateQuestRequest{
		Title:         "Audit the escrow contract",
		Description:   "Focus on the release path",
		Type:          "regular",
		RewardAmount:  2,
		SuppliedFunds: 2,
		Tags:          []string{"Zero Knowledge", "zero-knowledge", " DeFi "},
	})
	require.NoError(t, err)
	require.Equal(t, "open", resp.Status)
	require.Equal(t, []string{"zero-knowledge", "defi"}, resp.Tags)

	// The creator is created lazily from the wallet address.
	require.Equal(t, "user_111111", resp.Creator.Username)
	require.Equal(t, testutil.Wallet1, resp.Creator.WalletAddress)

	// Reusing a tag does not duplicate it.
	_, err = d.Create(ctx, &model.CreateQuestRequest{
		Title:         "Another quest",
		Description:   "Another description",
		Type:          "regular",
		RewardAmount:  1,
		SuppliedFunds: 1,
		Tags:          []string{"defi"},
	})
	require.NoError(t, err)

	tags, err := repository.NewTagRepository().GetAllNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"defi", "zero-knowledge"}, tags)
}

func Test_questDomain_GetList_PriorityOrder(t *testing.T) {
	ctx := testutil.MockContext()
	d := newQuestDomain()

	richRegular, err := testutil.SampleQuest(ctx, &entity.Quest{RewardAmount: 100, SuppliedFunds: 100})
	require.NoError(t, err)

	urgent, err := testutil.SampleTimeBasedQuest(ctx, 10*time.Minute)
	require.NoError(t, err)

	resp, err := d.GetList(ctx, &model.GetListQuestRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Quests, 2)

	// An open time-based quest close to its expiry outranks a rich regular
	// one: 1*10 + (10000-10) vs 100*10.
	require.Equal(t, urgent.ID, resp.Quests[0].ID)
	require.Equal(t, richRegular.ID, resp.Quests[1].ID)

	// A priority tie keeps the repository's recency order.
	newerRegular, err := testutil.SampleQuest(ctx, &entity.Quest{RewardAmount: 100, SuppliedFunds: 100})
	require.NoError(t, err)

	resp, err = d.GetList(ctx, &model.GetListQuestRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Quests, 3)
	require.Equal(t, urgent.ID, resp.Quests[0].ID)
	require.Equal(t, newerRegular.ID, resp.Quests[1].ID)
	require.Equal(t, richRegular.ID, resp.Quests[2].ID)
}

func Test_questDomain_Get_CorrectsStaleExpiry(t *testing.T) {
	ctx := testutil.MockContext()
	d := newQuestDomain()

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{
		Type:   entity.QuestTimeBased,
		Expiry: sql.NullTime{Valid: true, Time: time.Now().Add(-time.Hour)},
	})
	require.NoError(t, err)

	resp, err := d.Get(ctx, &model.GetQuestRequest{ID: quest.ID})
	require.NoError(t, err)
	require.Equal(t, "expired", resp.Status)
	require.True(t, resp.IsExpired)

	stored, err := repository.NewQuestRepository().GetByID(ctx, quest.ID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestExpired, stored.Status)
}

func Test_questDomain_SweepExpired_Idempotent(t *testing.T) {
	ctx := testutil.MockContext()
	d := newQuestDomain()

	_, err := testutil.SampleQuest(ctx, &entity.Quest{
		Type:   entity.QuestTimeBased,
		Expiry: sql.NullTime{Valid: true, Time: time.Now().Add(-time.Minute)},
	})
	require.NoError(t, err)

	_, err = testutil.SampleTimeBasedQuest(ctx, time.Hour)
	require.NoError(t, err)

	resp, err := d.SweepExpired(ctx, &model.SweepExpiredQuestsRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, resp.Expired)

	resp, err = d.SweepExpired(ctx, &model.SweepExpiredQuestsRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 0, resp.Expired)
}

func Test_questDomain_UpdateStatus_TerminalStates(t *testing.T) {
	ctx := testutil.MockContext()
	d := newQuestDomain()

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	_, err = d.UpdateStatus(ctx, &model.UpdateQuestStatusRequest{ID: quest.ID, Status: "completed"})
	require.NoError(t, err)

	_, err = d.UpdateStatus(ctx, &model.UpdateQuestStatusRequest{ID: quest.ID, Status: "open"})
	require.Error(t, err)
	require.Equal(t, "Cannot change status of a completed quest", err.Error())
}
