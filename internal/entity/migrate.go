package entity

import (
	"context"

	"github.com/retroquest-labs/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Quest{},
		&Claim{},
		&Tag{},
	)
}
