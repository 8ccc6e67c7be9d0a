// Package postgres implements the repositories on top of gorm and the
// PostgreSQL driver.
package postgres

import (
	"context"
	"errors"

	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var (
	_ repositories.Store                   = (*Store)(nil)
	_ repositories.UserRepository          = (*Store)(nil)
	_ repositories.VehicleRepository       = (*Store)(nil)
	_ repositories.RideRepository          = (*Store)(nil)
	_ repositories.ReviewRepository        = (*Store)(nil)
	_ repositories.PasswordResetRepository = (*Store)(nil)
)

// New expects a gorm handle opened with TranslateError enabled so unique
// violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicate
	default:
		return err
	}
}
