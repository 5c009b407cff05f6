package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserExists = errors.New("user already exists")
	ErrNotFound   = errors.New("record not found")
)

type GormRepo struct {
	DB *gorm.DB
}

// translate maps gorm driver errors onto the repo's sentinel set.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrUserExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return err
	}
}
