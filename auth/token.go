package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type (
	// Config carries everything the token issuer needs. It is passed
	// in at construction time, business logic never reaches for
	// ambient state.
	Config struct {
		// Secret is the symmetric key used to sign and verify
		// tokens.
		Secret []byte
		// Lifetime controls how long an issued token remains
		// valid, counted from issuance.
		Lifetime time.Duration
		Issuer   string
		Audience string
	}

	// Identity is the verified caller extracted from a token.
	Identity struct {
		UserID   uuid.UUID
		Username string
	}

	claims struct {
		Name string `json:"name"`
		jwt.RegisteredClaims
	}

	// Tokens issues and verifies the bearer tokens exchanged with
	// clients. Verification is stateless, there is no server-side
	// session and therefore no revocation.
	Tokens struct {
		cfg Config
		now func() time.Time
	}
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

func NewTokens(cfg Config) *Tokens {
	return &Tokens{cfg: cfg, now: time.Now}
}

func (t *Tokens) Issue(userID uuid.UUID, username string) (string, error) {
	now := t.now()
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.Lifetime)),
		},
	})
	signed, err := tk.SignedString(t.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("unable to sign token for user %v, cause %w", userID, err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry. Expiry is
// exact, there is no leeway for clock skew. Every failure collapses
// into ErrInvalidToken, callers treat the request as unauthenticated
// without learning why.
func (t *Tokens) Verify(token string) (Identity, error) {
	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (interface{}, error) {
		return t.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(cl.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Username: cl.Name}, nil
}

// ExpiresAt reports when a previously issued token stops being valid,
// without verifying it. Used to bound cache entries.
func (t *Tokens) ExpiresAt(token string) (time.Time, error) {
	var cl claims
	_, _, err := jwt.NewParser().ParseUnverified(token, &cl)
	if err != nil || cl.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}
	return cl.ExpiresAt.Time, nil
}
