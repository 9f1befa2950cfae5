package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/dto/order/request"
	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/dto/order/response"
	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-payment-service/internal/usecase/dto/order"
	usecase "github.com/LavaJover/shvark-payment-service/internal/usecase/order"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	uc usecase.PaymentUsecase
}

func NewOrderHandler(uc usecase.PaymentUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	order, err := h.uc.CreateOrder(c.Request.Context(), &orderdto.CreateOrderInput{
		UserID:      middleware.GetUserID(c),
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Amount:      req.Amount,
		Remark:      req.Remark,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, response.FromOrder(order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	owt, err := h.ownedOrder(c, c.Param("orderNo"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, response.FromOrderWithTransactions(owt))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query request.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "invalid pagination: "+err.Error())
		return
	}

	page, err := h.uc.ListOrders(c.Request.Context(), &orderdto.ListOrdersInput{
		UserID:   middleware.GetUserID(c),
		Page:     query.PageNumber(),
		PageSize: query.Size,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, response.FromOrderPage(page))
}

func (h *OrderHandler) RefundOrder(c *gin.Context) {
	orderNo := c.Param("orderNo")
	if _, err := h.ownedOrder(c, orderNo); err != nil {
		respondError(c, err)
		return
	}

	owt, err := h.uc.RefundOrder(c.Request.Context(), orderNo)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, response.FromOrderWithTransactions(owt))
}

// ownedOrder loads an order and hides it from anyone but its owner or an
// operator.
func (h *OrderHandler) ownedOrder(c *gin.Context, orderNo string) (*domain.OrderWithTransactions, error) {
	owt, err := h.uc.GetOrder(c.Request.Context(), orderNo)
	if err != nil {
		return nil, err
	}
	if owt.Order.UserID != middleware.GetUserID(c) && !middleware.IsOperator(c) {
		return nil, domain.NotFoundf("order %s not found", orderNo)
	}
	return owt, nil
}
