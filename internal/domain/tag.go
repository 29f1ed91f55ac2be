package domain

import (
	"context"

	"github.com/retroquest-labs/backend/internal/domain/tagutil"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

type TagDomain interface {
	GetList(ctx context.Context, req *model.GetListTagRequest) (*model.GetListTagResponse, error)
	Search(ctx context.Context, req *model.SearchTagRequest) (*model.SearchTagResponse, error)
	Suggest(ctx context.Context, req *model.SuggestTagRequest) (*model.SuggestTagResponse, error)
}

type tagDomain struct {
	tagRepo repository.TagRepository
}

func NewTagDomain(tagRepo repository.TagRepository) *tagDomain {
	return &tagDomain{tagRepo: tagRepo}
}

func (d *tagDomain) GetList(
	ctx context.Context, req *model.GetListTagRequest,
) (*model.GetListTagResponse, error) {
	counts, err := d.tagRepo.GetAllWithQuestCount(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tags: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetListTagResponse{Tags: []model.Tag{}}
	for _, count := range counts {
		resp.Tags = append(resp.Tags, model.Tag{Name: count.Name, QuestCount: count.QuestCount})
	}

	return resp, nil
}

// Search matches against the stored tags, falling back to the static popular
// list while the database is still empty.
func (d *tagDomain) Search(
	ctx context.Context, req *model.SearchTagRequest,
) (*model.SearchTagResponse, error) {
	available, err := d.tagRepo.GetAllNames(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tag names: %v", err)
		return nil, errorx.Unknown
	}

	if len(available) == 0 {
		available = tagutil.Popular()
	}

	return &model.SearchTagResponse{Tags: tagutil.Search(req.Q, available)}, nil
}

func (d *tagDomain) Suggest(
	ctx context.Context, req *model.SuggestTagRequest,
) (*model.SuggestTagResponse, error) {
	if req.Title == "" && req.Description == "" {
		return nil, errorx.New(errorx.BadRequest, "Require title or description")
	}

	return &model.SuggestTagResponse{Tags: tagutil.Suggest(req.Title, req.Description)}, nil
}
