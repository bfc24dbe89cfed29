package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrUserAlreadyExists
		}
		return wrapStoreErr(err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ? AND deleted_at IS NULL", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &u, nil
}

func (r *UserRepo) GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		First(&u, "document_number = ? AND deleted_at IS NULL", documentNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &u, nil
}

// UpdateLoginState persists the lockout bookkeeping after a login attempt.
func (r *UserRepo) UpdateLoginState(ctx context.Context, u *domain.User) error {
	return wrapStoreErr(r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"failed_login_count": u.FailedLoginCount,
			"locked_until":       u.LockedUntil,
			"last_login_at":      u.LastLoginAt,
		}).Error)
}
