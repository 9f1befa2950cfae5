package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-payment-service/internal/app/background"
	usecase "github.com/LavaJover/shvark-payment-service/internal/usecase/order"
)

type UseCases struct {
	PaymentUsecase  usecase.PaymentUsecase
	BackgroundTasks *background.BackgroundTasks
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	paymentUsecase, err := usecase.NewDefaultPaymentUsecase(
		deps.Repositories.OrderRepo,
		deps.Repositories.TransactionRepo,
		deps.Gateway,
		deps.Locker,
		deps.Metrics,
		deps.Config.Orders,
	)
	if err != nil {
		return nil, fmt.Errorf("payment usecase: %w", err)
	}

	relay := background.NewOutboxRelay(deps.Repositories.OutboxRepo, deps.Publisher, deps.Metrics, deps.Config.Outbox.BatchSize)
	tasks, err := background.NewBackgroundTasks(relay, deps.Config.Outbox.Schedule)
	if err != nil {
		return nil, fmt.Errorf("background tasks: %w", err)
	}

	return &UseCases{
		PaymentUsecase:  paymentUsecase,
		BackgroundTasks: tasks,
	}, nil
}
