package repository

import (
	"context"
	"errors"

	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

// ErrClaimNotPending is returned when a status transition finds the claim
// already out of the pending state, usually because a concurrent approval of
// a sibling claim won the race.
var ErrClaimNotPending = errors.New("claim is not pending")

type GetListClaimFilter struct {
	QuestID string
	UserID  string
	Status  []entity.ClaimStatus
	Offset  int
	Limit   int

	// OldestFirst orders claims ascending by creation time; listings per
	// quest and the pending queue use it, per-user history does not.
	OldestFirst bool
}

type ClaimRepository interface {
	Create(ctx context.Context, data *entity.Claim) error
	GetByID(ctx context.Context, id string) (*entity.Claim, error)
	GetLastPendingOrApproved(ctx context.Context, userID, questID string) (*entity.Claim, error)
	GetList(ctx context.Context, filter GetListClaimFilter) ([]entity.Claim, error)
	UpdateStatusByID(ctx context.Context, id string, status entity.ClaimStatus) error
	UpdatePendingStatusByID(ctx context.Context, id string, status entity.ClaimStatus) error
	RejectPendingSiblings(ctx context.Context, questID, exceptID string) error
}

type claimRepository struct{}

func NewClaimRepository() ClaimRepository {
	return &claimRepository{}
}

func (r *claimRepository) Create(ctx context.Context, data *entity.Claim) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	result := &entity.Claim{}
	err := xcontext.DB(ctx).
		Preload("Quest").
		Preload("Quest.Creator").
		Preload("User").
		Take(result, "claims.id=?", id).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *claimRepository) GetLastPendingOrApproved(
	ctx context.Context, userID, questID string,
) (*entity.Claim, error) {
	result := entity.Claim{}
	statuses := []entity.ClaimStatus{entity.ClaimPending, entity.ClaimApproved}
	err := xcontext.DB(ctx).
		Where("user_id=? AND quest_id=? AND status IN (?)", userID, questID, statuses).
		Order("created_at desc").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *claimRepository) GetList(
	ctx context.Context, filter GetListClaimFilter,
) ([]entity.Claim, error) {
	order := "claims.created_at DESC"
	if filter.OldestFirst {
		order = "claims.created_at ASC"
	}

	tx := xcontext.DB(ctx).
		Preload("Quest").
		Preload("Quest.Creator").
		Preload("User").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Order(order)

	if filter.QuestID != "" {
		tx = tx.Where("claims.quest_id=?", filter.QuestID)
	}

	if filter.UserID != "" {
		tx = tx.Where("claims.user_id=?", filter.UserID)
	}

	if len(filter.Status) > 0 {
		tx = tx.Where("claims.status IN (?)", filter.Status)
	}

	result := []entity.Claim{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *claimRepository) UpdateStatusByID(
	ctx context.Context, id string, status entity.ClaimStatus,
) error {
	return xcontext.DB(ctx).Model(&entity.Claim{}).
		Where("id=?", id).
		Update("status", status).Error
}

// UpdatePendingStatusByID transitions a claim out of pending. It fails if the
// claim is not pending anymore, which makes the compound approval transition
// safe under concurrent approvals of sibling claims.
func (r *claimRepository) UpdatePendingStatusByID(
	ctx context.Context, id string, status entity.ClaimStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Claim{}).
		Where("id=? AND status=?", id, entity.ClaimPending).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrClaimNotPending
	}

	return nil
}

func (r *claimRepository) RejectPendingSiblings(ctx context.Context, questID, exceptID string) error {
	return xcontext.DB(ctx).Model(&entity.Claim{}).
		Where("quest_id=? AND id<>? AND status=?", questID, exceptID, entity.ClaimPending).
		Update("status", entity.ClaimRejected).Error
}
