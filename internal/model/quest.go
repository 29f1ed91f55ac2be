package model

import "time"

type Quest struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	GithubURL       string   `json:"github_url,omitempty"`
	Type            string   `json:"type"`
	Status          string   `json:"status"`
	Expiry          string   `json:"expiry,omitempty"`
	RewardAmount    float64  `json:"reward_amount"`
	SuppliedFunds   float64  `json:"supplied_funds"`
	FundsReleased   bool     `json:"funds_released"`
	TransactionHash string   `json:"transaction_hash,omitempty"`
	Creator         User     `json:"creator"`
	Tags            []string `json:"tags"`
	CreatedAt       string   `json:"created_at"`

	// Computed at read time, never stored.
	Priority      float64 `json:"priority"`
	TimeRemaining string  `json:"time_remaining,omitempty"`
	IsExpired     bool    `json:"is_expired"`
	TotalClaims   int64   `json:"total_claims"`
}

type CreateQuestRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	GithubURL       string     `json:"github_url"`
	Type            string     `json:"type"`
	Expiry          *time.Time `json:"expiry"`
	Tags            []string   `json:"tags"`
	RewardAmount    float64    `json:"reward_amount"`
	SuppliedFunds   float64    `json:"supplied_funds"`
	TransactionHash string     `json:"transaction_hash"`
}

type CreateQuestResponse struct {
	Quest
}

type GetQuestRequest struct {
	ID string `json:"id" form:"id"`
}

type GetQuestResponse struct {
	Quest
}

type GetListQuestRequest struct {
	Status    string   `json:"status" form:"status"`
	Type      string   `json:"type" form:"type"`
	Tags      []string `json:"tags" form:"tags"`
	CreatorID string   `json:"creator_id" form:"creator_id"`
	Offset    int      `json:"offset" form:"offset"`
	Limit     int      `json:"limit" form:"limit"`
	Sort      string   `json:"sort" form:"sort"`
}

type GetListQuestResponse struct {
	Quests []Quest `json:"quests"`
}

type UpdateQuestStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type UpdateQuestStatusResponse struct{}

type SweepExpiredQuestsRequest struct{}

type SweepExpiredQuestsResponse struct {
	Expired int64 `json:"expired"`
}

type GetQuestStatsRequest struct{}

type GetQuestStatsResponse struct {
	Total        int64   `json:"total"`
	Open         int64   `json:"open"`
	Completed    int64   `json:"completed"`
	Expired      int64   `json:"expired"`
	TotalRewards float64 `json:"total_rewards"`
}
