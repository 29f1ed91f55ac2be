package model

type User struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
	XP            uint64 `json:"xp"`
	Level         uint64 `json:"level"`
	CreatedAt     string `json:"created_at"`
}

type GetUserRequest struct {
	ID            string `json:"id" form:"id"`
	WalletAddress string `json:"wallet_address" form:"wallet_address"`
}

type GetUserResponse struct {
	User
	Stats UserStats `json:"stats"`
}

type UserStats struct {
	CompletedQuests int     `json:"completed_quests"`
	PendingClaims   int     `json:"pending_claims"`
	TotalRewards    float64 `json:"total_rewards"`
	QuestsCreated   int     `json:"quests_created"`
}

type GetLeaderboardRequest struct {
	Limit int `json:"limit" form:"limit"`
}

type GetLeaderboardResponse struct {
	Users []User `json:"users"`
}
