package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOutboxRepository struct {
	DB *gorm.DB
}

func NewDefaultOutboxRepository(db *gorm.DB) *DefaultOutboxRepository {
	return &DefaultOutboxRepository{DB: db}
}

func (r *DefaultOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxRecord, error) {
	var rows []models.OutboxEventModel
	if err := r.DB.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, wrapStorageErr("fetch outbox", err)
	}

	records := make([]*domain.OutboxRecord, 0, len(rows))
	for i := range rows {
		records = append(records, mappers.ToDomainOutboxRecord(&rows[i]))
	}
	return records, nil
}

func (r *DefaultOutboxRepository) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.DB.WithContext(ctx).
		Model(&models.OutboxEventModel{}).
		Where("id IN ?", ids).
		Update("sent_at", time.Now()).Error; err != nil {
		return wrapStorageErr("mark outbox sent", err)
	}
	return nil
}
