package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetUser(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error)
	GetMe(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error)
	GetLeaderboard(ctx context.Context, req *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

type userDomain struct {
	userRepo  repository.UserRepository
	questRepo repository.QuestRepository
	claimRepo repository.ClaimRepository
}

func NewUserDomain(
	userRepo repository.UserRepository,
	questRepo repository.QuestRepository,
	claimRepo repository.ClaimRepository,
) *userDomain {
	return &userDomain{
		userRepo:  userRepo,
		questRepo: questRepo,
		claimRepo: claimRepo,
	}
}

// getOrCreateUserByWallet returns the user owning the wallet address, creating
// it with a generated username on first sight. Quests and claims reference
// users only through this path, so every wallet that touches the system gets
// exactly one user row.
func getOrCreateUserByWallet(
	ctx context.Context, userRepo repository.UserRepository, walletAddress string,
) (*entity.User, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	user, err := userRepo.GetByWalletAddress(ctx, walletAddress)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get user by wallet address: %v", err)
		return nil, errorx.Unknown
	}

	user = &entity.User{
		Base:          entity.Base{ID: uuid.NewString()},
		WalletAddress: walletAddress,
		Username:      fmt.Sprintf("user_%s", walletAddress[2:8]),
		Level:         1,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}

func (d *userDomain) GetUser(
	ctx context.Context, req *model.GetUserRequest,
) (*model.GetUserResponse, error) {
	var user *entity.User
	var err error
	switch {
	case req.ID != "":
		user, err = d.userRepo.GetByID(ctx, req.ID)
	case req.WalletAddress != "":
		user, err = d.userRepo.GetByWalletAddress(ctx, req.WalletAddress)
	default:
		return nil, errorx.New(errorx.BadRequest, "Require id or wallet address")
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	stats, err := d.statsOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetUserResponse{User: model.ConvertUser(user), Stats: stats}, nil
}

// GetMe resolves the authenticated wallet, creating the user lazily so a fresh
// wallet can call it before doing anything else.
func (d *userDomain) GetMe(
	ctx context.Context, req *model.GetUserRequest,
) (*model.GetUserResponse, error) {
	user, err := getOrCreateUserByWallet(ctx, d.userRepo, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	stats, err := d.statsOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetUserResponse{User: model.ConvertUser(user), Stats: stats}, nil
}

func (d *userDomain) statsOf(ctx context.Context, userID string) (model.UserStats, error) {
	claims, err := d.claimRepo.GetList(ctx, repository.GetListClaimFilter{
		UserID: userID,
		Limit:  -1,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claims of user: %v", err)
		return model.UserStats{}, errorx.Unknown
	}

	stats := model.UserStats{}
	for _, claim := range claims {
		switch claim.Status {
		case entity.ClaimApproved:
			stats.CompletedQuests++
			stats.TotalRewards += claim.Quest.RewardAmount
		case entity.ClaimPending:
			stats.PendingClaims++
		}
	}

	created, err := d.questRepo.GetList(ctx, repository.GetListQuestFilter{
		CreatorID: userID,
		Limit:     -1,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quests of user: %v", err)
		return model.UserStats{}, errorx.Unknown
	}

	stats.QuestsCreated = len(created)
	return stats, nil
}

func (d *userDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	cfg := xcontext.Configs(ctx).Quest
	limit := req.Limit
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}

	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	users, err := d.userRepo.GetLeaderboard(ctx, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetLeaderboardResponse{Users: []model.User{}}
	for i := range users {
		resp.Users = append(resp.Users, model.ConvertUser(&users[i]))
	}

	return resp, nil
}
