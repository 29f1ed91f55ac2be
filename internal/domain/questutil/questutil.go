// Package questutil computes the read-time quest metadata (expiry, remaining
// time, listing priority). Nothing here is ever persisted.
package questutil

import (
	"fmt"
	"time"

	"github.com/retroquest-labs/backend/internal/entity"
)

func IsExpired(quest *entity.Quest, now time.Time) bool {
	if quest.Type != entity.QuestTimeBased || !quest.Expiry.Valid {
		return false
	}

	return now.After(quest.Expiry.Time)
}

func TimeRemaining(quest *entity.Quest, now time.Time) time.Duration {
	if quest.Type != entity.QuestTimeBased || !quest.Expiry.Valid {
		return 0
	}

	remaining := quest.Expiry.Time.Sub(now)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func FormatTimeRemaining(quest *entity.Quest, now time.Time) string {
	if quest.Type != entity.QuestTimeBased || !quest.Expiry.Valid {
		return ""
	}

	if IsExpired(quest, now) {
		return "Expired"
	}

	remaining := TimeRemaining(quest, now)
	days := int(remaining.Hours()) / 24
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60
	seconds := int(remaining.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh remaining", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm remaining", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds remaining", minutes, seconds)
	default:
		return fmt.Sprintf("%ds remaining", seconds)
	}
}

// Priority scores a quest for the default listing order. The reward drives
// the base score; open time-based quests gain urgency as their expiry
// approaches.
func Priority(quest *entity.Quest, now time.Time) float64 {
	score := quest.RewardAmount * 10

	if quest.Type == entity.QuestTimeBased && quest.Status == entity.QuestOpen &&
		quest.Expiry.Valid && !IsExpired(quest, now) {
		minutes := TimeRemaining(quest, now).Minutes()
		if urgency := 10000 - minutes; urgency > 0 {
			score += urgency
		}
	}

	return score
}
