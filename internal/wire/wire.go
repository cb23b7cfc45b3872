package wire

import (
	"net/http"

	"course-platform/internal/adaptor"
	"course-platform/internal/data/repository"
	"course-platform/internal/usecase"
	"course-platform/pkg/gateway"
	"course-platform/pkg/middleware"
	"course-platform/pkg/notification"
	"course-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) (*App, error) {
	gatewayClient := gateway.NewRazorpayClient(config.Razorpay, logger)

	var dispatcher notification.Dispatcher
	if len(config.Kafka.Brokers) > 0 {
		kafkaDispatcher, err := notification.NewKafkaDispatcher(config.Kafka, logger)
		if err != nil {
			return nil, err
		}
		dispatcher = kafkaDispatcher
	} else {
		dispatcher = notification.NewNoopDispatcher(logger)
	}

	service := usecase.NewService(repo, gatewayClient, dispatcher, logger)
	handler := adaptor.NewHandler(service, gatewayClient, logger)

	router := setupRouter(handler, repo, logger)

	return &App{
		Router: router,
	}, nil
}

// setupRouter configures the Chi router
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wirePayment(r, handler.Payment, repo, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
