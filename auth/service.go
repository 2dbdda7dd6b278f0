package auth

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lfmonteiro/taskdeck/store"
)

type (
	// Service turns a username/password pair into a signed token.
	Service struct {
		store  *store.Store
		tokens *Tokens
	}
)

var (
	// ErrInvalidCredentials is the single outward signal for a failed
	// login. An unknown username and a wrong password are deliberately
	// indistinguishable to avoid user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	errInvalidUsername = errors.New("username is required and must not exceed 50 characters")
	errEmptyPassword   = errors.New("password is required")
)

func NewService(st *store.Store, tokens *Tokens) *Service {
	return &Service{store: st, tokens: tokens}
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.LookupUser(ctx, username)
	var notFound store.UserNotFound
	if errors.As(err, &notFound) {
		return "", ErrInvalidCredentials
	} else if err != nil {
		return "", fmt.Errorf("unable to login user %v, cause %w", username, err)
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID, user.Username)
}

// Register creates a user with a freshly hashed password. It is not
// exposed over HTTP, account creation happens via the command line.
func (s *Service) Register(ctx context.Context, username, password string) (store.User, error) {
	if username == "" || utf8.RuneCountInString(username) > 50 {
		return store.User{}, errInvalidUsername
	}
	if password == "" {
		return store.User{}, errEmptyPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return store.User{}, fmt.Errorf("unable to hash password of user %v, cause %w", username, err)
	}
	user := store.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
	}
	err = s.store.CreateUser(ctx, user)
	if err != nil {
		return store.User{}, err
	}
	return user, nil
}
