package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retroquest-labs/backend/internal/domain/questutil"
	"github.com/retroquest-labs/backend/internal/domain/tagutil"
	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/enum"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type QuestDomain interface {
	Create(ctx context.Context, req *model.CreateQuestRequest) (*model.CreateQuestResponse, error)
	Get(ctx context.Context, req *model.GetQuestRequest) (*model.GetQuestResponse, error)
	GetList(ctx context.Context, req *model.GetListQuestRequest) (*model.GetListQuestResponse, error)
	UpdateStatus(ctx context.Context, req *model.UpdateQuestStatusRequest) (*model.UpdateQuestStatusResponse, error)
	SweepExpired(ctx context.Context, req *model.SweepExpiredQuestsRequest) (*model.SweepExpiredQuestsResponse, error)
	GetStats(ctx context.Context, req *model.GetQuestStatsRequest) (*model.GetQuestStatsResponse, error)
}

type questDomain struct {
	questRepo repository.QuestRepository
	userRepo  repository.UserRepository
	tagRepo   repository.TagRepository
}

func NewQuestDomain(
	questRepo repository.QuestRepository,
	userRepo repository.UserRepository,
	tagRepo repository.TagRepository,
) *questDomain {
	return &questDomain{
		questRepo: questRepo,
		userRepo:  userRepo,
		tagRepo:   tagRepo,
	}
}

// canReleaseFunds tells whether the escrow of a quest may still be released.
// Released quests and quests without a deposit never qualify, and a quest out
// of the open state already paid out or expired.
func canReleaseFunds(quest *entity.Quest) bool {
	return !quest.FundsReleased && quest.SuppliedFunds > 0 && quest.Status == entity.QuestOpen
}

func (d *questDomain) Create(
	ctx context.Context, req *model.CreateQuestRequest,
) (*model.CreateQuestResponse, error) {
	violations := []string{}
	if req.Title == "" {
		violations = append(violations, "Require title")
	}

	if req.Description == "" {
		violations = append(violations, "Require description")
	}

	questType, err := enum.ToEnum[entity.QuestType](req.Type)
	if err != nil {
		violations = append(violations, fmt.Sprintf("Invalid quest type %s", req.Type))
	}

	if req.RewardAmount <= 0 {
		violations = append(violations, "Reward amount must be positive")
	}

	if req.SuppliedFunds < req.RewardAmount {
		violations = append(violations, "Supplied funds must cover the reward amount")
	}

	expiry := sql.NullTime{}
	if questType == entity.QuestTimeBased {
		switch {
		case req.Expiry == nil:
			violations = append(violations, "Require expiry for time-based quest")
		case !req.Expiry.After(time.Now()):
			violations = append(violations, "Expiry must be in the future")
		default:
			expiry = sql.NullTime{Valid: true, Time: *req.Expiry}
		}
	}

	tagNames, tagViolations := tagutil.Validate(req.Tags)
	violations = append(violations, tagViolations...)

	// Every violated rule is reported in one response.
	if len(violations) > 0 {
		return nil, errorx.New(errorx.BadRequest, "%s", strings.Join(violations, "; "))
	}

	creator, err := getOrCreateUserByWallet(ctx, d.userRepo, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	tags := []entity.Tag{}
	for _, name := range tagNames {
		tags = append(tags, entity.Tag{Base: entity.Base{ID: uuid.NewString()}, Name: name})
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.tagRepo.Upsert(ctx, tags); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert tags: %v", err)
		return nil, errorx.Unknown
	}

	// Reload so quests attach to the already existing tag rows instead of the
	// freshly generated ids the upsert skipped.
	tags, err = d.tagRepo.GetByNames(ctx, tagNames)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tags: %v", err)
		return nil, errorx.Unknown
	}

	quest := &entity.Quest{
		Base:            entity.Base{ID: uuid.NewString()},
		Title:           req.Title,
		Description:     req.Description,
		GithubURL:       req.GithubURL,
		Type:            questType,
		Status:          entity.QuestOpen,
		Expiry:          expiry,
		RewardAmount:    req.RewardAmount,
		SuppliedFunds:   req.SuppliedFunds,
		TransactionHash: req.TransactionHash,
		CreatorID:       creator.ID,
		Creator:         *creator,
		Tags:            tags,
	}
	if err := d.questRepo.Create(ctx, quest); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create quest: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.CreateQuestResponse{Quest: model.ConvertQuest(quest, 0)}, nil
}

func (d *questDomain) Get(
	ctx context.Context, req *model.GetQuestRequest,
) (*model.GetQuestResponse, error) {
	quest, err := d.loadQuest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	totalClaims, err := d.questRepo.CountClaims(ctx, quest.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count claims of quest: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetQuestResponse{Quest: model.ConvertQuest(quest, totalClaims)}, nil
}

// loadQuest gets a quest and corrects its status if the expiry has passed
// since the last sweep. The correction is persisted so later readers see the
// same state.
func (d *questDomain) loadQuest(ctx context.Context, id string) (*entity.Quest, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Require quest id")
	}

	quest, err := d.questRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	if quest.Status == entity.QuestOpen && questutil.IsExpired(quest, time.Now()) {
		if err := d.questRepo.UpdateStatusByID(ctx, quest.ID, entity.QuestExpired); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot expire quest: %v", err)
			return nil, errorx.Unknown
		}

		quest.Status = entity.QuestExpired
	}

	return quest, nil
}

func (d *questDomain) GetList(
	ctx context.Context, req *model.GetListQuestRequest,
) (*model.GetListQuestResponse, error) {
	cfg := xcontext.Configs(ctx).Quest
	if req.Limit == 0 {
		req.Limit = cfg.DefaultLimit
	}

	if req.Limit < 0 || req.Limit > cfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Limit must be in range [1, %d]", cfg.MaxLimit)
	}

	filter := repository.GetListQuestFilter{
		CreatorID: req.CreatorID,
		Tags:      tagutil.Normalize(req.Tags),
		Offset:    req.Offset,
		Limit:     req.Limit,
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.QuestStatusType](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}

		filter.Status = status
	}

	if req.Type != "" {
		questType, err := enum.ToEnum[entity.QuestType](req.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid quest type %s", req.Type)
		}

		filter.Type = questType
	}

	quests, err := d.questRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quests: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetListQuestResponse{Quests: []model.Quest{}}
	for i := range quests {
		totalClaims, err := d.questRepo.CountClaims(ctx, quests[i].ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count claims of quest: %v", err)
			return nil, errorx.Unknown
		}

		resp.Quests = append(resp.Quests, model.ConvertQuest(&quests[i], totalClaims))
	}

	// The default order surfaces high-reward quests first and bumps open
	// time-based quests close to their expiry. Ties fall back to recency,
	// which the repository already provides and the stable sort keeps.
	if req.Sort == "" || req.Sort == "priority" {
		slices.SortStableFunc(resp.Quests, func(a, b model.Quest) int {
			switch {
			case a.Priority > b.Priority:
				return -1
			case a.Priority < b.Priority:
				return 1
			default:
				return 0
			}
		})
	}

	return resp, nil
}

func (d *questDomain) UpdateStatus(
	ctx context.Context, req *model.UpdateQuestStatusRequest,
) (*model.UpdateQuestStatusResponse, error) {
	status, err := enum.ToEnum[entity.QuestStatusType](req.Status)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
	}

	quest, err := d.loadQuest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if quest.Status == status {
		return &model.UpdateQuestStatusResponse{}, nil
	}

	// Completed and expired are terminal.
	if quest.Status != entity.QuestOpen {
		return nil, errorx.New(errorx.Unavailable,
			"Cannot change status of a %s quest", quest.Status)
	}

	if err := d.questRepo.UpdateStatusByID(ctx, quest.ID, status); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update quest status: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateQuestStatusResponse{}, nil
}

func (d *questDomain) SweepExpired(
	ctx context.Context, req *model.SweepExpiredQuestsRequest,
) (*model.SweepExpiredQuestsResponse, error) {
	expired, err := d.questRepo.ExpireOpenTimeBased(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sweep expired quests: %v", err)
		return nil, errorx.Unknown
	}

	if expired > 0 {
		xcontext.Logger(ctx).Infof("Swept %d expired quests", expired)
	}

	return &model.SweepExpiredQuestsResponse{Expired: expired}, nil
}

func (d *questDomain) GetStats(
	ctx context.Context, req *model.GetQuestStatsRequest,
) (*model.GetQuestStatsResponse, error) {
	statistics, err := d.questRepo.Statistic(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest statistic: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetQuestStatsResponse{}
	for _, s := range statistics {
		resp.Total += s.Count
		resp.TotalRewards += s.Reward

		switch s.Status {
		case entity.QuestOpen:
			resp.Open = s.Count
		case entity.QuestCompleted:
			resp.Completed = s.Count
		case entity.QuestExpired:
			resp.Expired = s.Count
		}
	}

	return resp, nil
}
