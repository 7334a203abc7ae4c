package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
)

// Authenticator is the subset of library.API used to sign in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (library.TokenResponse, error)
	Me(ctx context.Context) (library.User, error)
}

// SignIn exchanges credentials for a token, stores it, and attaches the
// profile. When /users/me fails the profile is decoded from the token so
// ownership checks keep working; a token without a usable subject leaves the
// session authenticated but without a profile.
func SignIn(ctx context.Context, api Authenticator, store *Store, email, password string, logger *zap.Logger) (Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tok, err := api.Login(ctx, email, password)
	if err != nil {
		return Snapshot{}, fmt.Errorf("login: %w", err)
	}
	store.Login(tok.AccessToken)

	user, err := api.Me(ctx)
	if err != nil {
		logger.Warn("fetch profile failed, decoding token", zap.Error(err))
		user, err = UserFromToken(tok.AccessToken)
		if err != nil {
			logger.Warn("decode token failed", zap.Error(err))
			return store.Snapshot(), nil
		}
		if user.Email == "" {
			user.Email = email
		}
	}
	store.SetUser(user)
	return store.Snapshot(), nil
}
