package model

type Tag struct {
	Name       string `json:"name"`
	QuestCount int64  `json:"quest_count"`
}

type GetListTagRequest struct{}

type GetListTagResponse struct {
	Tags []Tag `json:"tags"`
}

type SearchTagRequest struct {
	Q string `json:"q" form:"q"`
}

type SearchTagResponse struct {
	Tags []string `json:"tags"`
}

type SuggestTagRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

type SuggestTagResponse struct {
	Tags []string `json:"tags"`
}
