package request

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	ProductID   int64           `json:"productId" binding:"required"`
	ProductName string          `json:"productName" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Remark      string          `json:"remark"`
}

type PayRequest struct {
	OrderNo       string `json:"orderNo" binding:"required"`
	PayerIdentity string `json:"payerIdentity" binding:"required"`
}

// ListOrdersQuery accepts current as an alias of page.
type ListOrdersQuery struct {
	Page    int `form:"page"`
	Current int `form:"current"`
	Size    int `form:"size"`
}

func (q ListOrdersQuery) PageNumber() int {
	if q.Page > 0 {
		return q.Page
	}
	return q.Current
}
