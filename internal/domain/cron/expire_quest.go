package cron

import (
	"context"
	"time"

	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

// ExpireQuestCronJob periodically flips open time-based quests past their
// expiry to expired. Reads also correct stale quests lazily; the sweep only
// bounds how long a stale row can survive without being read.
type ExpireQuestCronJob struct {
	questRepo repository.QuestRepository
}

func NewExpireQuestCronJob(questRepo repository.QuestRepository) *ExpireQuestCronJob {
	return &ExpireQuestCronJob{questRepo: questRepo}
}

func (job *ExpireQuestCronJob) Do(ctx context.Context) {
	expired, err := job.questRepo.ExpireOpenTimeBased(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot expire quests: %v", err)
		return
	}

	if expired > 0 {
		xcontext.Logger(ctx).Infof("Expired %d quests", expired)
	}
}

func (job *ExpireQuestCronJob) RunNow() bool {
	return true
}

func (job *ExpireQuestCronJob) Next() time.Time {
	return time.Now().Add(time.Minute)
}
