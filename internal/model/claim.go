package model

type Claim struct {
	ID        string `json:"id"`
	QuestID   string `json:"quest_id"`
	UserID    string `json:"user_id"`
	ProofURL  string `json:"proof_url,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	Quest *Quest `json:"quest,omitempty"`
	User  *User  `json:"user,omitempty"`
}

type SubmitClaimRequest struct {
	QuestID  string `json:"quest_id"`
	ProofURL string `json:"proof_url"`
	Username string `json:"username"`
}

type SubmitClaimResponse struct {
	Claim
}

type GetClaimRequest struct {
	ID string `json:"id" form:"id"`
}

type GetClaimResponse struct {
	Claim
}

type GetListClaimRequest struct {
	QuestID string `json:"quest_id" form:"quest_id"`
	UserID  string `json:"user_id" form:"user_id"`
	Offset  int    `json:"offset" form:"offset"`
	Limit   int    `json:"limit" form:"limit"`
}

type GetListClaimResponse struct {
	Claims []Claim `json:"claims"`
}

type GetPendingClaimsRequest struct {
	Limit int `json:"limit" form:"limit"`
}

type GetPendingClaimsResponse struct {
	Claims []Claim `json:"claims"`
}

type ReviewClaimRequest struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	SkipRewards bool   `json:"skip_rewards"`
}

type ReviewClaimResponse struct {
	Claim
}

type ApproveClaimRequest struct {
	ID          string `json:"id"`
	SkipRewards bool   `json:"skip_rewards"`
}

type ApproveClaimResponse struct {
	Claim
}

type RejectClaimRequest struct {
	ID string `json:"id"`
}

type RejectClaimResponse struct {
	Claim
}

type UserClaimStats struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Approved     int     `json:"approved"`
	Rejected     int     `json:"rejected"`
	TotalRewards float64 `json:"total_rewards"`
}

type GetUserClaimStatsRequest struct {
	UserID string `json:"user_id" form:"user_id"`
}

type GetUserClaimStatsResponse struct {
	UserClaimStats
}

type QuestClaimStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type GetQuestClaimStatsRequest struct {
	QuestID string `json:"quest_id" form:"quest_id"`
}

type GetQuestClaimStatsResponse struct {
	QuestClaimStats
}
