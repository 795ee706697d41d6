package converter

import (
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/gateway"
)

func PaymentOrderToResponse(order *gateway.PaymentOrder) *dto.PaymentOrderResponse {
	if order == nil {
		return nil
	}

	return &dto.PaymentOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
	}
}
