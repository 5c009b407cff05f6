package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/logging"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repo"
	"github.com/vidtube/vidtube/internal/tokens"
	"github.com/vidtube/vidtube/internal/transport"
)

// TokenService owns the access/renewal credential lifecycle. The live
// renewal-token value is mirrored on the user row: overwriting it is the
// sole invalidation mechanism, which gives single-active-session semantics
// without a revocation list.
type TokenService struct {
	Repo          repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (s *TokenService) IssueAccessToken(u *models.User) (string, time.Time, error) {
	exp := time.Now().Add(s.AccessTTL)
	claims := tokens.AccessClaims{
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *TokenService) signRefreshToken(u *models.User) (string, time.Time, error) {
	exp := time.Now().Add(s.RefreshTTL)
	claims := tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique id so that back-to-back rotations within the same
			// second still mint distinct token values.
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefreshToken signs a renewal token and persists its value on the
// user row, overwriting whatever was there. Earlier renewal tokens stop
// validating at that moment.
func (s *TokenService) IssueRefreshToken(ctx context.Context, u *models.User) (string, time.Time, error) {
	signed, exp, err := s.signRefreshToken(u)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.Repo.SetRefreshToken(ctx, u.ID, signed); err != nil {
		return "", time.Time{}, err
	}
	u.RefreshToken = signed
	return signed, exp, nil
}

// Rotate mints a fresh pair for the user and persists the new renewal
// value. Lower-level causes never reach the caller: any failure here is an
// internal error.
func (s *TokenService) Rotate(ctx context.Context, userID uuid.UUID) (*transport.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "tokens.rotate")

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		l.Error("rotate failed", "reason", "user lookup", "error", err)
		return nil, fmt.Errorf("%w: token rotation failed", ErrInternal)
	}

	access, accessExp, err := s.IssueAccessToken(user)
	if err != nil {
		l.Error("rotate failed", "reason", "sign access", "error", err)
		return nil, fmt.Errorf("%w: token rotation failed", ErrInternal)
	}

	refresh, refreshExp, err := s.IssueRefreshToken(ctx, user)
	if err != nil {
		l.Error("rotate failed", "reason", "sign or persist refresh", "error", err)
		return nil, fmt.Errorf("%w: token rotation failed", ErrInternal)
	}

	return &transport.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// ValidateRenewal checks signature, expiry and the mirrored value on the
// user row. Only a token equal to the currently stored one is redeemable;
// anything older was invalidated by rotation or logout.
func (s *TokenService) ValidateRenewal(ctx context.Context, presented string) (*models.User, error) {
	if presented == "" {
		return nil, fmt.Errorf("%w: refresh token missing", ErrUnauthorized)
	}

	claims, err := tokens.RefreshClaimsFromToken(presented, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token rejected", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token rejected", ErrInvalidToken)
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: refresh token rejected", ErrInvalidToken)
		}
		logging.FromContext(ctx).Error("renewal validation failed", "svc", "tokens.validate_renewal", "error", err)
		return nil, fmt.Errorf("%w: could not validate refresh token", ErrInternal)
	}

	if user.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no active session", ErrInvalidToken)
	}
	if user.RefreshToken != presented {
		return nil, ErrTokenReused
	}

	return user, nil
}
