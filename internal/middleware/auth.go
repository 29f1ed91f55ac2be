package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/pkg/authenticator"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/router"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// Middleware verifies the bearer token and attaches the caller's wallet
// address to the context as the request user id.
func (v *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		auth, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || auth != "Bearer" || token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := v.tokenEngine.Verify(token)
		if err != nil || info.WalletAddress == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.WalletAddress), nil
	}
}
