package service

import (
	"context"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vidtube/vidtube/internal/hash"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repo"
	"github.com/vidtube/vidtube/internal/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Video{},
		&models.WatchEvent{},
	))
	return db
}

// fakeMedia stands in for the object store; it never touches the network.
type fakeMedia struct {
	failUpload bool
	failDelete bool
	uploads    []string
	deletes    []string
}

func (f *fakeMedia) Upload(_ context.Context, localPath string) (*storage.Object, error) {
	if localPath == "" {
		return nil, nil
	}
	if f.failUpload {
		return nil, errors.New("object store rejected upload")
	}
	f.uploads = append(f.uploads, localPath)
	key := "media/" + path.Base(localPath)
	return &storage.Object{URL: "https://cdn.test/bucket/" + key, Key: key}, nil
}

func (f *fakeMedia) Delete(_ context.Context, ref string) bool {
	f.deletes = append(f.deletes, ref)
	return !f.failDelete
}

type testEnv struct {
	db     *gorm.DB
	rp     repo.GormRepo
	media  *fakeMedia
	tokens *TokenService
	users  *UserService
	views  *ViewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	rp := repo.GormRepo{DB: db}
	media := &fakeMedia{}

	tokens := &TokenService{
		Repo:          rp,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}

	return &testEnv{
		db:     db,
		rp:     rp,
		media:  media,
		tokens: tokens,
		users: &UserService{
			Repo:   rp,
			Tokens: tokens,
			Media:  media,
		},
		views: &ViewService{Repo: rp},
	}
}

func (e *testEnv) createUser(t *testing.T, username, email, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        email,
		FullName:     "Test " + username,
		PasswordHash: pwHash,
		Avatar:       "https://cdn.test/bucket/media/" + username + ".png",
	}
	require.NoError(t, e.rp.CreateUser(context.Background(), &user))
	return &user
}
