package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/events"
	"github.com/vidtube/vidtube/internal/hash"
	"github.com/vidtube/vidtube/internal/logging"
	"github.com/vidtube/vidtube/internal/repo"
	"github.com/vidtube/vidtube/internal/storage"
	"github.com/vidtube/vidtube/internal/transport"

	"github.com/vidtube/vidtube/internal/models"
)

// UserService orchestrates the account workflows over the credential
// store, the token manager and the media gateway. Producer may be nil, in
// which case no events are emitted.
type UserService struct {
	Repo     repo.GormRepo
	Tokens   *TokenService
	Media    storage.MediaStore
	Producer *events.Producer
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string

	// Local temp-file paths spooled by the HTTP boundary; empty means the
	// field was not uploaded.
	AvatarPath string
	CoverPath  string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*transport.UserResponse, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	// The secret is hashed exactly as supplied; trimming here is only the
	// emptiness check. Login and ChangePassword verify the raw input.
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	// Friendly fast path only; the store constraint is the real guarantee.
	if _, err := s.Repo.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, fmt.Errorf("%w: user with email or username already exists", ErrConflict)
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("register failed", "reason", "uniqueness pre-check", "error", err)
		return nil, fmt.Errorf("%w: could not register user", ErrInternal)
	}

	if in.AvatarPath == "" {
		return nil, fmt.Errorf("%w: avatar file is required", ErrValidation)
	}

	avatar, err := s.Media.Upload(ctx, in.AvatarPath)
	if err != nil || avatar == nil {
		l.Error("register failed", "reason", "avatar upload", "error", err)
		return nil, fmt.Errorf("%w: avatar upload failed", ErrUpload)
	}

	// Cover is optional; a failed cover upload degrades to no cover.
	coverURL := ""
	if in.CoverPath != "" {
		cover, err := s.Media.Upload(ctx, in.CoverPath)
		if err != nil {
			l.Warn("cover upload failed", "error", err)
		} else if cover != nil {
			coverURL = cover.URL
		}
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register failed", "reason", "hash password", "error", err)
		return nil, fmt.Errorf("%w: could not register user", ErrInternal)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: pwHash,
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			return nil, fmt.Errorf("%w: user with email or username already exists", ErrConflict)
		}
		l.Error("register failed", "reason", "create", "error", err)
		return nil, fmt.Errorf("%w: could not register user", ErrInternal)
	}

	l.Info("user registered", "user_id", user.ID, "username", user.Username)
	s.publish(ctx, user.ID, map[string]any{
		"type":     "user_registered",
		"userId":   user.ID,
		"username": user.Username,
	})

	return transport.NewUserResponse(&user), nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "users.login")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		l.Error("login failed", "reason", "lookup", "error", err)
		return nil, fmt.Errorf("%w: could not log in", ErrInternal)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "bad credentials", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	access, accessExp, err := s.Tokens.IssueAccessToken(user)
	if err != nil {
		l.Error("login failed", "reason", "sign access", "error", err)
		return nil, fmt.Errorf("%w: could not log in", ErrInternal)
	}
	refresh, refreshExp, err := s.Tokens.IssueRefreshToken(ctx, user)
	if err != nil {
		l.Error("login failed", "reason", "sign or persist refresh", "error", err)
		return nil, fmt.Errorf("%w: could not log in", ErrInternal)
	}

	l.Info("user logged in", "user_id", user.ID)
	s.publish(ctx, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userId": user.ID,
	})

	return &transport.LoginResult{
		User:         transport.NewUserResponse(user),
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Logout clears the mirrored renewal-token value; the previously issued
// renewal token stops validating immediately.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "users.logout")

	if err := s.Repo.SetRefreshToken(ctx, userID, ""); err != nil {
		l.Error("logout failed", "error", err)
		return fmt.Errorf("%w: could not log out", ErrInternal)
	}

	l.Info("user logged out", "user_id", userID)
	s.publish(ctx, userID, map[string]any{
		"type":   "user_logged_out",
		"userId": userID,
	})
	return nil
}

// RefreshSession redeems a presented renewal token for a fresh pair.
func (s *UserService) RefreshSession(ctx context.Context, presented string) (*transport.TokenPair, error) {
	user, err := s.Tokens.ValidateRenewal(ctx, presented)
	if err != nil {
		return nil, err
	}
	return s.Tokens.Rotate(ctx, user.ID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "users.change_password")

	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password is required", ErrValidation)
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		l.Error("change password failed", "reason", "lookup", "error", err)
		return fmt.Errorf("%w: could not change password", ErrInternal)
	}

	if !hash.CheckPassword(user.PasswordHash, oldPassword) {
		return fmt.Errorf("%w: invalid old password", ErrUnauthorized)
	}

	// Every mutation path that touches the secret re-hashes explicitly.
	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		l.Error("change password failed", "reason", "hash", "error", err)
		return fmt.Errorf("%w: could not change password", ErrInternal)
	}
	if _, err := s.Repo.UpdateUserFields(ctx, userID, map[string]any{"password_hash": pwHash}); err != nil {
		l.Error("change password failed", "reason", "persist", "error", err)
		return fmt.Errorf("%w: could not change password", ErrInternal)
	}

	l.Info("password changed", "user_id", userID)
	s.publish(ctx, userID, map[string]any{
		"type":   "password_changed",
		"userId": userID,
	})
	return nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID uuid.UUID) (*transport.UserResponse, error) {
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: could not load user", ErrInternal)
	}
	return transport.NewUserResponse(user), nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (*transport.UserResponse, error) {
	l := logging.FromContext(ctx).With("svc", "users.update_account")

	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, fmt.Errorf("%w: full name and email are required", ErrValidation)
	}

	user, err := s.Repo.UpdateUserFields(ctx, userID, map[string]any{
		"full_name": fullName,
		"email":     email,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
		case errors.Is(err, repo.ErrUserExists):
			return nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		l.Error("update account failed", "error", err)
		return nil, fmt.Errorf("%w: could not update account", ErrInternal)
	}

	return transport.NewUserResponse(user), nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*transport.UserResponse, error) {
	return s.replaceImage(ctx, userID, localPath, "avatar")
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*transport.UserResponse, error) {
	return s.replaceImage(ctx, userID, localPath, "cover_image")
}

// replaceImage uploads the new file, swaps the stored URL and then deletes
// the previous object. A failed delete of the old object is logged and
// does not fail the request; the URL swap already persisted.
func (s *UserService) replaceImage(ctx context.Context, userID uuid.UUID, localPath, column string) (*transport.UserResponse, error) {
	l := logging.FromContext(ctx).With("svc", "users.update_"+column)

	if localPath == "" {
		return nil, fmt.Errorf("%w: image file is required", ErrValidation)
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		l.Error("image update failed", "reason", "lookup", "error", err)
		return nil, fmt.Errorf("%w: could not update image", ErrInternal)
	}

	previous := user.Avatar
	if column == "cover_image" {
		previous = user.CoverImage
	}

	obj, err := s.Media.Upload(ctx, localPath)
	if err != nil || obj == nil {
		l.Error("image update failed", "reason", "upload", "error", err)
		return nil, fmt.Errorf("%w: image upload failed", ErrUpload)
	}

	updated, err := s.Repo.UpdateUserFields(ctx, userID, map[string]any{column: obj.URL})
	if err != nil {
		l.Error("image update failed", "reason", "persist", "error", err)
		return nil, fmt.Errorf("%w: could not update image", ErrInternal)
	}

	if previous != "" && !s.Media.Delete(ctx, previous) {
		l.Warn("stale media object left behind", "url", previous)
	}

	return transport.NewUserResponse(updated), nil
}

func (s *UserService) publish(ctx context.Context, userID uuid.UUID, event map[string]any) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, userID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "error", err)
	}
}
