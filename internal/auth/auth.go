package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"timed-quiz-service/internal/domain"
)

// AnonymousUser is the identity used when authentication is disabled and the caller names nobody.
const AnonymousUser = "anonymous"

// Claims carries the user identity in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 tokens.
// With an empty secret it trusts the userId query parameter instead.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether tokens are required.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Issue signs a token for userID.
func (a *Authenticator) Issue(userID string) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("jwt secret not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	now := a.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses a token and returns the user it was issued for.
func (a *Authenticator) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		},
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}

// Authenticate resolves the caller of r. Tokens come from the Authorization
// header ("Bearer ...") or, for browser websockets, the token query parameter.
func (a *Authenticator) Authenticate(r *http.Request) (string, error) {
	if !a.Enabled() {
		if userID := r.URL.Query().Get("userId"); userID != "" {
			return userID, nil
		}
		return AnonymousUser, nil
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if tokenString == "" {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		return "", fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	return a.Verify(tokenString)
}

type userKey struct{}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the user stored by WithUser.
func UserFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok && userID != ""
}
