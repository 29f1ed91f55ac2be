package questutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_Priority(t *testing.T) {
	now := time.Now()

	regular := &entity.Quest{
		Type:         entity.QuestRegular,
		Status:       entity.QuestOpen,
		RewardAmount: 100,
	}
	require.EqualValues(t, 1000, Priority(regular, now))

	urgent := &entity.Quest{
		Type:         entity.QuestTimeBased,
		Status:       entity.QuestOpen,
		RewardAmount: 1,
		Expiry:       sql.NullTime{Valid: true, Time: now.Add(10 * time.Minute)},
	}
	require.InDelta(t, 10+(10000-10), Priority(urgent, now), 1)

	// Expired or non-open time-based quests get no urgency bump.
	expired := &entity.Quest{
		Type:         entity.QuestTimeBased,
		Status:       entity.QuestOpen,
		RewardAmount: 1,
		Expiry:       sql.NullTime{Valid: true, Time: now.Add(-time.Minute)},
	}
	require.EqualValues(t, 10, Priority(expired, now))

	completed := &entity.Quest{
		Type:         entity.QuestTimeBased,
		Status:       entity.QuestCompleted,
		RewardAmount: 1,
		Expiry:       sql.NullTime{Valid: true, Time: now.Add(10 * time.Minute)},
	}
	require.EqualValues(t, 10, Priority(completed, now))
}

func Test_FormatTimeRemaining(t *testing.T) {
	now := time.Now()

	quest := func(in time.Duration) *entity.Quest {
		return &entity.Quest{
			Type:   entity.QuestTimeBased,
			Expiry: sql.NullTime{Valid: true, Time: now.Add(in)},
		}
	}

	require.Equal(t, "2d 3h remaining", FormatTimeRemaining(quest(51*time.Hour), now))
	require.Equal(t, "3h 30m remaining", FormatTimeRemaining(quest(210*time.Minute), now))
	require.Equal(t, "5m 0s remaining", FormatTimeRemaining(quest(5*time.Minute), now))
	require.Equal(t, "42s remaining", FormatTimeRemaining(quest(42*time.Second), now))
	require.Equal(t, "Expired", FormatTimeRemaining(quest(-time.Second), now))

	regular := &entity.Quest{Type: entity.QuestRegular}
	require.Equal(t, "", FormatTimeRemaining(regular, now))
}
