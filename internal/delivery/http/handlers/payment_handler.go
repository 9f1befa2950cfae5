package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/dto/order/request"
	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/wechatpay"
	orderdto "github.com/LavaJover/shvark-payment-service/internal/usecase/dto/order"
	usecase "github.com/LavaJover/shvark-payment-service/internal/usecase/order"
	"github.com/gin-gonic/gin"
)

const maxNotificationBytes = 64 << 10

type PaymentHandler struct {
	uc usecase.PaymentUsecase
}

func NewPaymentHandler(uc usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) Pay(c *gin.Context) {
	var req request.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	params, err := h.uc.InitiatePayment(c.Request.Context(), &orderdto.InitiatePaymentInput{
		OrderNo:       req.OrderNo,
		PayerIdentity: req.PayerIdentity,
		UserID:        middleware.GetUserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, params)
}

// Callback receives the provider's XML notification. It always answers 200;
// the XML return_code tells the provider whether to redeliver.
func (h *PaymentHandler) Callback(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNotificationBytes))
	if err != nil {
		slog.Warn("failed to read payment notification", "error", err)
		c.Data(http.StatusOK, "application/xml; charset=utf-8", wechatpay.Ack(false, "unreadable body"))
		return
	}

	ack := h.uc.HandlePaymentNotification(c.Request.Context(), raw)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", wechatpay.Ack(ack.Success, ack.Message))
}
