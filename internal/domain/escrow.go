package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

const releaseFundsFunction = "releaseQuestFunds"

// EscrowCoordinator builds the on-chain call directives an external wallet
// must sign. The backend never talks to the chain itself; it only authorizes
// releases off-chain and hands out the exact call to perform.
type EscrowCoordinator interface {
	BuildReleaseAction(ctx context.Context, questID, claimerAddress string) (*model.EscrowAction, error)
}

type escrowCoordinator struct{}

func NewEscrowCoordinator() *escrowCoordinator {
	return &escrowCoordinator{}
}

func (c *escrowCoordinator) BuildReleaseAction(
	ctx context.Context, questID, claimerAddress string,
) (*model.EscrowAction, error) {
	cfg := xcontext.Configs(ctx).Escrow
	if !common.IsHexAddress(cfg.ContractAddress) {
		xcontext.Logger(ctx).Errorf("Invalid escrow contract address %s", cfg.ContractAddress)
		return nil, errorx.Unknown
	}

	if !common.IsHexAddress(claimerAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid claimer wallet address")
	}

	return &model.EscrowAction{
		ContractAddress: common.HexToAddress(cfg.ContractAddress).Hex(),
		FunctionName:    releaseFundsFunction,
		Args:            []string{questID, common.HexToAddress(claimerAddress).Hex()},
	}, nil
}
