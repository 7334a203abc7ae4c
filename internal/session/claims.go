package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/five82/shelf/internal/library"
)

// UserFromToken decodes the token's claims without verifying the signature
// and returns a minimal profile carrying the subject as user id. It is only
// used when /users/me cannot be reached; the server stays the authority on
// what the token grants.
func UserFromToken(token string) (library.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return library.User{}, fmt.Errorf("parse token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return library.User{}, fmt.Errorf("read subject: %w", err)
	}
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return library.User{}, fmt.Errorf("token has no subject")
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return library.User{}, fmt.Errorf("subject %q is not a user id: %w", sub, err)
	}
	user := library.User{ID: id}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	return user, nil
}
