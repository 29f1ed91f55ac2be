package testutil

import (
	"context"
	"time"

	"github.com/retroquest-labs/backend/config"
	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/pkg/logger"
	"github.com/retroquest-labs/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	// Wallet1 and Wallet2 are well-formed addresses for authenticated calls.
	Wallet1 = "0x1111111111111111111111111111111111111111"
	Wallet2 = "0x2222222222222222222222222222222222222222"

	ContractAddress = "0xCcccCCCcCCCCcCCCcCccCcccCccccCcCCCCCcccC"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Quest: config.QuestConfigs{
			ApproveXP:    50,
			LevelXP:      100,
			DefaultLimit: 10,
			MaxLimit:     50,
		},
		Auth: config.AuthConfigs{
			TokenSecret:     "secret",
			TokenExpiration: config.Duration{Duration: time.Minute},
		},
		ZkVerify: config.ZkVerifyConfigs{
			ProveAttempts:     2,
			JobStatusAttempts: 2,
			PollInterval:      config.Duration{Duration: time.Millisecond},
		},
		Escrow: config.EscrowConfigs{
			ContractAddress: ContractAddress,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(walletAddress string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), walletAddress)
}
