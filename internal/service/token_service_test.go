package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/tokens"
)

func TestIssueAccessToken_CarriesIdentityClaims(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	raw, exp, err := env.tokens.IssueAccessToken(created)
	require.NoError(t, err)
	require.False(t, exp.IsZero())

	claims, err := tokens.AccessClaimsFromToken(raw, env.tokens.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, created.FullName, claims.FullName)
}

func TestIssueRefreshToken_MirrorsValueOnUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	raw, _, err := env.tokens.IssueRefreshToken(ctx, created)
	require.NoError(t, err)

	stored, err := env.rp.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, stored.RefreshToken)
}

func TestValidateRenewal_MissingToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tokens.ValidateRenewal(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateRenewal_GarbageToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tokens.ValidateRenewal(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRenewal_UnknownSubject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ghost := &models.User{ID: uuid.New()}
	raw, _, err := env.tokens.signRefreshToken(ghost)
	require.NoError(t, err)

	_, err = env.tokens.ValidateRenewal(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRenewal_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	raw, _, err := env.tokens.IssueRefreshToken(ctx, created)
	require.NoError(t, err)

	user, err := env.tokens.ValidateRenewal(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestValidateRenewal_StoreFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	raw, _, err := env.tokens.IssueRefreshToken(ctx, created)
	require.NoError(t, err)

	// A dead store is not the caller's fault; it must not read as a
	// rejected token.
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = env.tokens.ValidateRenewal(ctx, raw)
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestRotate_InvalidatesPreviousRenewalToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	old, _, err := env.tokens.IssueRefreshToken(ctx, created)
	require.NoError(t, err)

	pair, err := env.tokens.Rotate(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, old, pair.RefreshToken)

	// The rotated-away token is single-use: presenting it again fails.
	_, err = env.tokens.ValidateRenewal(ctx, old)
	assert.ErrorIs(t, err, ErrTokenReused)

	// The freshly minted one validates.
	user, err := env.tokens.ValidateRenewal(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestValidateRenewal_AfterLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	raw, _, err := env.tokens.IssueRefreshToken(ctx, created)
	require.NoError(t, err)
	require.NoError(t, env.rp.SetRefreshToken(ctx, created.ID, ""))

	_, err = env.tokens.ValidateRenewal(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotate_UnknownUserIsInternalError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tokens.Rotate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestRefreshSession_RotatesThroughUserService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", "a@x.com", "Secret123")

	res, err := env.users.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	pair, err := env.users.RefreshSession(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.RefreshToken, pair.RefreshToken)

	_, err = env.users.RefreshSession(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenReused)
}
