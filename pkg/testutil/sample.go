package testutil

import (
	"context"
	"database/sql"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/internal/repository"
)

// SampleUser creates a user with randomized fields. Non-zero fields of init
// overwrite the sample before it is persisted.
func SampleUser(ctx context.Context, init *entity.User) (entity.User, error) {
	id := uuid.NewString()
	sample := &entity.User{
		Base:          entity.Base{ID: id},
		WalletAddress: "0x" + id[:8] + "00000000000000000000000000000000",
		Username:      "user_" + id[:6],
		Level:         1,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewUserRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func SampleQuest(ctx context.Context, init *entity.Quest) (entity.Quest, error) {
	creator, err := SampleUser(ctx, nil)
	if err != nil {
		return entity.Quest{}, err
	}

	sample := &entity.Quest{
		Base:          entity.Base{ID: uuid.NewString()},
		Title:         uuid.NewString(),
		Description:   uuid.NewString(),
		Type:          entity.QuestRegular,
		Status:        entity.QuestOpen,
		RewardAmount:  1,
		SuppliedFunds: 1,
		CreatorID:     creator.ID,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewQuestRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

// SampleTimeBasedQuest is a shortcut for an open time-based quest expiring
// after the given duration.
func SampleTimeBasedQuest(ctx context.Context, expiresIn time.Duration) (entity.Quest, error) {
	return SampleQuest(ctx, &entity.Quest{
		Type:   entity.QuestTimeBased,
		Expiry: sql.NullTime{Valid: true, Time: time.Now().Add(expiresIn)},
	})
}

func SampleClaim(ctx context.Context, init *entity.Claim) (entity.Claim, error) {
	sample := &entity.Claim{
		Base:   entity.Base{ID: uuid.NewString()},
		Status: entity.ClaimPending,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if sample.QuestID == "" {
		quest, err := SampleQuest(ctx, nil)
		if err != nil {
			return *sample, err
		}

		sample.QuestID = quest.ID
	}

	if sample.UserID == "" {
		user, err := SampleUser(ctx, nil)
		if err != nil {
			return *sample, err
		}

		sample.UserID = user.ID
	}

	if err := repository.NewClaimRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.IsZero() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
