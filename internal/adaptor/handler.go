package adaptor

import (
	"course-platform/internal/usecase"
	"course-platform/pkg/gateway"

	"go.uber.org/zap"
)

type Handler struct {
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, gatewayClient gateway.Client, log *zap.Logger) *Handler {
	return &Handler{
		Payment: NewPaymentHandler(service.Payment, gatewayClient, log),
	}
}
