package repository

import (
	"context"

	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type TagQuestCount struct {
	Name       string
	QuestCount int64
}

type TagRepository interface {
	Upsert(ctx context.Context, tags []entity.Tag) error
	GetByNames(ctx context.Context, names []string) ([]entity.Tag, error)
	GetAllNames(ctx context.Context) ([]string, error)
	GetAllWithQuestCount(ctx context.Context) ([]TagQuestCount, error)
}

type tagRepository struct{}

func NewTagRepository() TagRepository {
	return &tagRepository{}
}

func (r *tagRepository) Upsert(ctx context.Context, tags []entity.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&tags).Error
}

func (r *tagRepository) GetByNames(ctx context.Context, names []string) ([]entity.Tag, error) {
	result := []entity.Tag{}
	if err := xcontext.DB(ctx).Find(&result, "name IN (?)", names).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *tagRepository) GetAllNames(ctx context.Context) ([]string, error) {
	result := []string{}
	err := xcontext.DB(ctx).Model(&entity.Tag{}).
		Order("name ASC").
		Pluck("name", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *tagRepository) GetAllWithQuestCount(ctx context.Context) ([]TagQuestCount, error) {
	result := []TagQuestCount{}
	err := xcontext.DB(ctx).Model(&entity.Tag{}).
		Select("tags.name, COUNT(quest_tags.quest_id) as quest_count").
		Joins("LEFT JOIN quest_tags ON quest_tags.tag_id = tags.id").
		Group("tags.id").
		Order("quest_count DESC").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
