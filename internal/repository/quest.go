package repository

import (
	"context"
	"time"

	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type GetListQuestFilter struct {
	Status    entity.QuestStatusType
	Type      entity.QuestType
	Tags      []string
	CreatorID string
	Offset    int
	Limit     int
}

type QuestStatusStatistic struct {
	Status entity.QuestStatusType
	Count  int64
	Reward float64
}

type QuestRepository interface {
	Create(ctx context.Context, quest *entity.Quest) error
	GetByID(ctx context.Context, id string) (*entity.Quest, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Quest, error)
	GetList(ctx context.Context, filter GetListQuestFilter) ([]entity.Quest, error)
	UpdateStatusByID(ctx context.Context, id string, status entity.QuestStatusType) error
	ReleaseFundsByID(ctx context.Context, id string) error
	ExpireOpenTimeBased(ctx context.Context, now time.Time) (int64, error)
	Statistic(ctx context.Context) ([]QuestStatusStatistic, error)
	CountClaims(ctx context.Context, questID string) (int64, error)
}

type questRepository struct{}

func NewQuestRepository() QuestRepository {
	return &questRepository{}
}

func (r *questRepository) Create(ctx context.Context, quest *entity.Quest) error {
	return xcontext.DB(ctx).Create(quest).Error
}

func (r *questRepository) GetByID(ctx context.Context, id string) (*entity.Quest, error) {
	result := &entity.Quest{}
	err := xcontext.DB(ctx).
		Preload("Creator").
		Preload("Tags").
		Take(result, "quests.id=?", id).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetByIDForUpdate locks the quest row until the surrounding transaction
// finishes. It must be called inside xcontext.WithDBTransaction. Sqlite has
// no SELECT FOR UPDATE; its transactions already serialize writers.
func (r *questRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Quest, error) {
	db := xcontext.DB(ctx)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	result := &entity.Quest{}
	err := db.Take(result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRepository) GetList(
	ctx context.Context, filter GetListQuestFilter,
) ([]entity.Quest, error) {
	tx := xcontext.DB(ctx).
		Preload("Creator").
		Preload("Tags").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Order("quests.created_at DESC")

	if filter.Status != "" {
		tx = tx.Where("quests.status=?", filter.Status)
	}

	if filter.Type != "" {
		tx = tx.Where("quests.type=?", filter.Type)
	}

	if filter.CreatorID != "" {
		tx = tx.Where("quests.creator_id=?", filter.CreatorID)
	}

	if len(filter.Tags) > 0 {
		tx = tx.
			Joins("JOIN quest_tags ON quest_tags.quest_id = quests.id").
			Joins("JOIN tags ON tags.id = quest_tags.tag_id").
			Where("tags.name IN (?)", filter.Tags).
			Distinct("quests.*")
	}

	result := []entity.Quest{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRepository) UpdateStatusByID(
	ctx context.Context, id string, status entity.QuestStatusType,
) error {
	return xcontext.DB(ctx).Model(&entity.Quest{}).
		Where("id=?", id).
		Update("status", status).Error
}

// ReleaseFundsByID records the optimistic released flag and completes the
// quest in one write. Calling it again on a released quest is a no-op.
func (r *questRepository) ReleaseFundsByID(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.Quest{}).
		Where("id=?", id).
		Updates(map[string]any{
			"funds_released": true,
			"status":         entity.QuestCompleted,
		}).Error
}

// ExpireOpenTimeBased flips every open time-based quest past its expiry to
// expired. Safe to run repeatedly and concurrently, the WHERE clause makes
// the update idempotent.
func (r *questRepository) ExpireOpenTimeBased(ctx context.Context, now time.Time) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.Quest{}).
		Where("type=? AND status=? AND expiry < ?", entity.QuestTimeBased, entity.QuestOpen, now).
		Update("status", entity.QuestExpired)
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func (r *questRepository) Statistic(ctx context.Context) ([]QuestStatusStatistic, error) {
	result := []QuestStatusStatistic{}
	err := xcontext.DB(ctx).Model(&entity.Quest{}).
		Select("status, COUNT(*) as count, SUM(reward_amount) as reward").
		Group("status").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRepository) CountClaims(ctx context.Context, questID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Claim{}).
		Where("quest_id=?", questID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
