package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) (int64, error) {
	txModel := mappers.ToGORMTransaction(tx)
	if err := r.DB.WithContext(ctx).Create(txModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, domain.NewError(domain.KindDuplicateNotification, "transaction "+tx.TransactionNo+" already recorded", err)
		}
		return 0, wrapStorageErr("create transaction", err)
	}
	tx.ID = txModel.ID
	tx.CreatedAt = txModel.CreatedAt
	return txModel.ID, nil
}

// GetTransactionsByOrderID returns the settlement history oldest first.
func (r *DefaultTransactionRepository) GetTransactionsByOrderID(ctx context.Context, orderID int64) ([]*domain.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&txModels).Error; err != nil {
		return nil, wrapStorageErr("list transactions", err)
	}

	txs := make([]*domain.Transaction, 0, len(txModels))
	for i := range txModels {
		txs = append(txs, mappers.ToDomainTransaction(&txModels[i]))
	}
	return txs, nil
}

func (r *DefaultTransactionRepository) GetTransactionByNo(ctx context.Context, transactionNo string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	if err := r.DB.WithContext(ctx).First(&txModel, "transaction_no = ?", transactionNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("transaction %s not found", transactionNo)
		}
		return nil, wrapStorageErr("get transaction", err)
	}
	return mappers.ToDomainTransaction(&txModel), nil
}
