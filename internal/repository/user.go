package repository

import (
	"context"

	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByWalletAddress(ctx context.Context, address string) (*entity.User, error)
	UpdateByID(ctx context.Context, id string, data *entity.User) error
	UpdateXPByID(ctx context.Context, id string, xp, level uint64) error
	GetLeaderboard(ctx context.Context, limit int) ([]entity.User, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	result := &entity.User{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) GetByWalletAddress(ctx context.Context, address string) (*entity.User, error) {
	result := &entity.User{}
	if err := xcontext.DB(ctx).Take(result, "wallet_address=?", address).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, data *entity.User) error {
	updateMap := map[string]any{}
	if data.Username != "" {
		updateMap["username"] = data.Username
	}

	if data.Email != "" {
		updateMap["email"] = data.Email
	}

	if len(updateMap) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap).Error
}

func (r *userRepository) UpdateXPByID(ctx context.Context, id string, xp, level uint64) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Updates(map[string]any{"xp": xp, "level": level}).Error
}

func (r *userRepository) GetLeaderboard(ctx context.Context, limit int) ([]entity.User, error) {
	result := []entity.User{}
	err := xcontext.DB(ctx).
		Order("xp DESC").
		Order("level DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
