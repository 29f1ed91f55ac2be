package domain

import (
	"context"

	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/authenticator"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

type AuthDomain interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type authDomain struct {
	userRepo    repository.UserRepository
	tokenEngine authenticator.TokenEngine[model.AccessToken]
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	tokenEngine authenticator.TokenEngine[model.AccessToken],
) *authDomain {
	return &authDomain{userRepo: userRepo, tokenEngine: tokenEngine}
}

// Login issues an access token for a wallet address, creating the user on
// first sight. Wallet ownership is proven on-chain when the wallet signs
// escrow calls; the token only binds API writes to one wallet.
func (d *authDomain) Login(
	ctx context.Context, req *model.LoginRequest,
) (*model.LoginResponse, error) {
	user, err := getOrCreateUserByWallet(ctx, d.userRepo, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	token, err := d.tokenEngine.Generate(user.ID, model.AccessToken{
		WalletAddress: user.WalletAddress,
		Username:      user.Username,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LoginResponse{AccessToken: token, User: model.ConvertUser(user)}, nil
}
