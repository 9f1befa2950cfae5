package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/metrics"
	usecase "github.com/LavaJover/shvark-payment-service/internal/usecase/order"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type RouterDeps struct {
	Usecase       usecase.PaymentUsecase
	JWTSecret     string
	ServerMetrics *metrics.ServerMetrics
	Gatherer      prometheus.Gatherer
	// Health reports whether the service can reach its database.
	Health func(ctx context.Context) error
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if deps.ServerMetrics != nil {
		r.Use(middleware.Metrics(deps.ServerMetrics))
	}

	r.GET("/healthz", healthz(deps.Health))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	orderHandler := handlers.NewOrderHandler(deps.Usecase)
	paymentHandler := handlers.NewPaymentHandler(deps.Usecase)

	api := r.Group("/api/v1")

	// Provider callbacks are authenticated by signature, not caller identity.
	api.POST("/payments/callback", paymentHandler.Callback)

	authed := api.Group("", middleware.Identity(deps.JWTSecret))
	{
		authed.POST("/orders", orderHandler.CreateOrder)
		authed.GET("/orders", orderHandler.ListOrders)
		authed.GET("/orders/:orderNo", orderHandler.GetOrder)
		authed.POST("/orders/:orderNo/refund", orderHandler.RefundOrder)
		authed.POST("/payments/pay", paymentHandler.Pay)
	}

	return r
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
