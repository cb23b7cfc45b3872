package usecase

import (
	"course-platform/internal/data/repository"
	"course-platform/pkg/gateway"
	"course-platform/pkg/notification"

	"go.uber.org/zap"
)

type Service struct {
	Payment PaymentService
}

func NewService(repo *repository.Repository, gatewayClient gateway.Client, dispatcher notification.Dispatcher, log *zap.Logger) *Service {
	materializer := NewMaterializer(repo, dispatcher, log)

	return &Service{
		Payment: NewPaymentService(repo, gatewayClient, materializer, log),
	}
}
