package usecase

import (
	"context"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-payment-service/internal/usecase/dto/order"
)

func (uc *DefaultPaymentUsecase) GetOrder(ctx context.Context, orderNo string) (*domain.OrderWithTransactions, error) {
	if orderNo == "" {
		return nil, domain.Validationf("orderNo is required")
	}

	order, err := uc.OrderRepo.GetOrderByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	transactions, err := uc.TransactionRepo.GetTransactionsByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &domain.OrderWithTransactions{
		Order:        order,
		Transactions: transactions,
	}, nil
}

func (uc *DefaultPaymentUsecase) ListOrders(ctx context.Context, input *orderdto.ListOrdersInput) (*domain.OrderPage, error) {
	if input == nil || input.UserID <= 0 {
		return nil, domain.Validationf("userId must be positive")
	}

	// Валидация пагинации
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = uc.defaultPageSize()
	}
	if limit := uc.maxPageSize(); pageSize > limit {
		pageSize = limit
	}

	orders, total, err := uc.OrderRepo.GetOrdersByUserID(ctx, input.UserID, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &domain.OrderPage{
		Orders:   orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (uc *DefaultPaymentUsecase) defaultPageSize() int {
	if uc.Pagination.DefaultPageSize > 0 {
		return uc.Pagination.DefaultPageSize
	}
	return 10
}

func (uc *DefaultPaymentUsecase) maxPageSize() int {
	if uc.Pagination.MaxPageSize > 0 {
		return uc.Pagination.MaxPageSize
	}
	return 100
}
