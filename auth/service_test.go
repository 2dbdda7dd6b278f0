package auth

import (
	"context"
	"testing"

	"github.com/lfmonteiro/taskdeck/internal/testutil"
	"github.com/lfmonteiro/taskdeck/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	st, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()
	tokens := NewTokens(testConfig())
	svc := NewService(st, tokens)

	user, err := svc.Register(ctx, "testuser", "testpassword")
	require.NoError(t, err)
	assert.NotEqual(t, "testpassword", user.PasswordHash, "raw password must never be stored")

	signed, err := svc.Login(ctx, "testuser", "testpassword")
	require.NoError(t, err)
	caller, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, caller.UserID)
	assert.Equal(t, "testuser", caller.Username)
}

func TestLoginFailuresAreIndistinct(t *testing.T) {
	ctx := context.Background()
	st, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()
	svc := NewService(st, NewTokens(testConfig()))

	_, err := svc.Register(ctx, "testuser", "testpassword")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "testuser", "wrongpassword")
	_, unknownUser := svc.Login(ctx, "nobody", "testpassword")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownUser, "wrong password and unknown user must look the same")
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	st, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()
	svc := NewService(st, nil)

	_, err := svc.Register(ctx, "", "testpassword")
	assert.Error(t, err)
	_, err = svc.Register(ctx, "testuser", "")
	assert.Error(t, err)

	longName := make([]byte, 51)
	for i := range longName {
		longName[i] = 'a'
	}
	_, err = svc.Register(ctx, string(longName), "testpassword")
	assert.Error(t, err)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	st, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()
	svc := NewService(st, nil)

	_, err := svc.Register(ctx, "testuser", "testpassword")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "testuser", "otherpassword")
	var taken store.UsernameTaken
	assert.ErrorAs(t, err, &taken)
}
