package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/models"
)

// CreateUser inserts the record. The store's uniqueness constraints are the
// actual guarantee against handle/email races; a duplicate-key rejection
// comes back as ErrUserExists.
func (r GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByUsernameOrEmail backs the friendly pre-check on registration. The
// caller still has to handle ErrUserExists from CreateUser; this is only the
// fast path.
func (r GormRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UpdateUserFields applies a partial update and returns the fresh record.
func (r GormRepo) UpdateUserFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error) {
	tx := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return nil, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// SetRefreshToken overwrites the mirrored renewal-token value. Passing ""
// clears it, which is all logout needs to invalidate the active session.
func (r GormRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	tx := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
