package model

import (
	"time"

	"github.com/retroquest-labs/backend/internal/domain/questutil"
	"github.com/retroquest-labs/backend/internal/entity"
)

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		ID:            user.ID,
		WalletAddress: user.WalletAddress,
		Username:      user.Username,
		Email:         user.Email,
		XP:            user.XP,
		Level:         user.Level,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339Nano),
	}
}

func ConvertQuest(quest *entity.Quest, totalClaims int64) Quest {
	if quest == nil {
		return Quest{}
	}

	now := time.Now()

	expiry := ""
	if quest.Expiry.Valid {
		expiry = quest.Expiry.Time.Format(time.RFC3339Nano)
	}

	tags := []string{}
	for _, tag := range quest.Tags {
		tags = append(tags, tag.Name)
	}

	return Quest{
		ID:              quest.ID,
		Title:           quest.Title,
		Description:     quest.Description,
		GithubURL:       quest.GithubURL,
		Type:            string(quest.Type),
		Status:          string(quest.Status),
		Expiry:          expiry,
		RewardAmount:    quest.RewardAmount,
		SuppliedFunds:   quest.SuppliedFunds,
		FundsReleased:   quest.FundsReleased,
		TransactionHash: quest.TransactionHash,
		Creator:         ConvertUser(&quest.Creator),
		Tags:            tags,
		CreatedAt:       quest.CreatedAt.Format(time.RFC3339Nano),
		Priority:        questutil.Priority(quest, now),
		TimeRemaining:   questutil.FormatTimeRemaining(quest, now),
		IsExpired:       questutil.IsExpired(quest, now),
		TotalClaims:     totalClaims,
	}
}

func ConvertClaim(claim *entity.Claim, includeQuest, includeUser bool) Claim {
	if claim == nil {
		return Claim{}
	}

	result := Claim{
		ID:        claim.ID,
		QuestID:   claim.QuestID,
		UserID:    claim.UserID,
		ProofURL:  claim.ProofURL,
		Status:    string(claim.Status),
		CreatedAt: claim.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: claim.UpdatedAt.Format(time.RFC3339Nano),
	}

	if includeQuest {
		quest := ConvertQuest(&claim.Quest, 0)
		result.Quest = &quest
	}

	if includeUser {
		user := ConvertUser(&claim.User)
		result.User = &user
	}

	return result
}
