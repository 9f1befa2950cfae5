package response

import (
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
)

type OrderResponse struct {
	ID            int64     `json:"id"`
	OrderNo       string    `json:"orderNo"`
	UserID        int64     `json:"userId"`
	ProductID     int64     `json:"productId"`
	ProductName   string    `json:"productName"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	Remark        string    `json:"remark,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type TransactionResponse struct {
	ID            int64     `json:"id"`
	TransactionNo string    `json:"transactionNo"`
	Amount        string    `json:"amount"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	PaymentTime   time.Time `json:"paymentTime"`
	CreatedAt     time.Time `json:"createdAt"`
}

type OrderDetailResponse struct {
	Order        OrderResponse         `json:"order"`
	Transactions []TransactionResponse `json:"transactions"`
}

type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

func FromOrder(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		ProductID:     o.ProductID,
		ProductName:   o.ProductName,
		Amount:        o.Amount.StringFixed(2),
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		TransactionID: o.TransactionID,
		Remark:        o.Remark,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func FromOrderWithTransactions(owt *domain.OrderWithTransactions) OrderDetailResponse {
	txs := make([]TransactionResponse, 0, len(owt.Transactions))
	for _, tx := range owt.Transactions {
		txs = append(txs, TransactionResponse{
			ID:            tx.ID,
			TransactionNo: tx.TransactionNo,
			Amount:        tx.Amount.StringFixed(2),
			Type:          string(tx.Type),
			Status:        string(tx.Status),
			PaymentTime:   tx.PaymentTime,
			CreatedAt:     tx.CreatedAt,
		})
	}
	return OrderDetailResponse{Order: FromOrder(owt.Order), Transactions: txs}
}

func FromOrderPage(p *domain.OrderPage) OrderListResponse {
	items := make([]OrderResponse, 0, len(p.Orders))
	for _, o := range p.Orders {
		items = append(items, FromOrder(o))
	}
	return OrderListResponse{Items: items, Total: p.Total, Page: p.Page, Size: p.PageSize}
}
