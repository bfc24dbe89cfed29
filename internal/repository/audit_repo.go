package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
)

type AuditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	return wrapStoreErr(r.db.WithContext(ctx).Create(entry).Error)
}
