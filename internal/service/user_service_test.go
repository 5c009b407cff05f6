package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/vidtube/internal/models"
)

func registerInput() RegisterInput {
	return RegisterInput{
		Username:   "Alice",
		Email:      "a@x.com",
		FullName:   "Alice Anderson",
		Password:   "Secret123",
		AvatarPath: "/tmp/avatar.png",
	}
}

func TestRegister_NormalizesHandleAndStripsSecrets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, registerInput())
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, user.Avatar)
	assert.Empty(t, user.CoverImage)

	var stored models.User
	require.NoError(t, env.db.Where("username = ?", "alice").First(&stored).Error)
	assert.NotEqual(t, "Secret123", stored.PasswordHash)
	assert.Empty(t, stored.RefreshToken)
}

func TestRegister_ConflictIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Register(ctx, registerInput())
	require.NoError(t, err)

	in := registerInput()
	in.Username = "ALICE"
	in.Email = "other@x.com"
	_, err = env.users.Register(ctx, in)
	assert.ErrorIs(t, err, ErrConflict)

	in = registerInput()
	in.Username = "bob"
	_, err = env.users.Register(ctx, in) // same email
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_ValidatesRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := registerInput()
	in.FullName = "   "
	_, err := env.users.Register(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = registerInput()
	in.AvatarPath = ""
	_, err = env.users.Register(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_AvatarUploadFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	env.media.failUpload = true
	ctx := context.Background()

	_, err := env.users.Register(ctx, registerInput())
	assert.ErrorIs(t, err, ErrUpload)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegister_CoverUploadIsOptionalAndNonFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := registerInput()
	in.CoverPath = "/tmp/cover.png"
	user, err := env.users.Register(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, user.CoverImage)
	assert.Len(t, env.media.uploads, 2)
}

func TestRegister_PasswordHashedAsSupplied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := registerInput()
	in.Password = "  Secret123  "
	_, err := env.users.Register(ctx, in)
	require.NoError(t, err)

	// The exact plaintext supplied at registration must verify, padding
	// included.
	res, err := env.users.Login(ctx, "a@x.com", "  Secret123  ")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)

	_, err = env.users.Login(ctx, "a@x.com", "Secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Login(context.Background(), "nobody@x.com", "Secret123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "a@x.com", "Secret123")

	_, err := env.users.Login(context.Background(), "a@x.com", "WrongSecret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_IssuesTokensAndMirrorsRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	res, err := env.users.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "alice", res.User.Username)

	stored, err := env.rp.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, res.RefreshToken, stored.RefreshToken)
}

func TestLogout_ClearsMirroredRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	_, err := env.users.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	require.NoError(t, env.users.Logout(ctx, created.ID))

	stored, err := env.rp.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshToken)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	err := env.users.ChangePassword(context.Background(), created.ID, "WrongSecret", "NewSecret456")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChangePassword_RehashesNewSecret(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	require.NoError(t, env.users.ChangePassword(ctx, created.ID, "Secret123", "NewSecret456"))

	_, err := env.users.Login(ctx, "a@x.com", "Secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := env.users.Login(ctx, "a@x.com", "NewSecret456")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
}

func TestUpdateAccount_Validation(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	_, err := env.users.UpdateAccount(context.Background(), created.ID, "", "a@x.com")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAccount_Success(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	user, err := env.users.UpdateAccount(context.Background(), created.ID, "Alice B", "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.FullName)
	assert.Equal(t, "b@x.com", user.Email)
}

func TestUpdateAccount_EmailConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "a@x.com", "Secret123")
	bob := env.createUser(t, "bob", "b@x.com", "Secret123")

	_, err := env.users.UpdateAccount(context.Background(), bob.ID, "Bob B", "a@x.com")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateAvatar_RequiresFile(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	_, err := env.users.UpdateAvatar(context.Background(), created.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAvatar_SwapsURLAndDeletesOldObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")
	oldURL := created.Avatar

	user, err := env.users.UpdateAvatar(ctx, created.ID, "/tmp/new-avatar.png")
	require.NoError(t, err)
	assert.NotEqual(t, oldURL, user.Avatar)
	require.Len(t, env.media.deletes, 1)
	assert.Equal(t, oldURL, env.media.deletes[0])
}

func TestUpdateAvatar_OldObjectDeleteFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(t)
	env.media.failDelete = true
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	user, err := env.users.UpdateAvatar(ctx, created.ID, "/tmp/new-avatar.png")
	require.NoError(t, err)
	assert.NotEmpty(t, user.Avatar)
}

func TestUpdateCoverImage_NoPreviousObjectMeansNoDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	user, err := env.users.UpdateCoverImage(ctx, created.ID, "/tmp/cover.png")
	require.NoError(t, err)
	assert.NotEmpty(t, user.CoverImage)
	assert.Empty(t, env.media.deletes)
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "alice", "a@x.com", "Secret123")

	user, err := env.users.CurrentUser(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
}
