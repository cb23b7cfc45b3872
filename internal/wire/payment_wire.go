package wire

import (
	"course-platform/internal/adaptor"
	"course-platform/internal/data/repository"
	"course-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/payments/create - Start a purchase, returns the checkout payload
		r.Post("/api/payments/create", paymentHandler.InitiatePayment)

		// POST /api/payments/verify - Confirm a payment after the client redirect
		r.Post("/api/payments/verify", paymentHandler.VerifyPayment)

		// GET /api/payments/transactions - Caller's payment history
		r.Get("/api/payments/transactions", paymentHandler.GetTransactions)
	})

	// ==================== WEBHOOK (gateway server-to-server) ====================
	// Authenticated by the webhook HMAC, not by a session; routed into the
	// same verify operation as the client redirect.
	r.Post("/api/payments/webhook", paymentHandler.Webhook)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/payments", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		// POST /api/admin/payments/{id}/refund - Refund a completed payment
		r.Post("/{id}/refund", paymentHandler.RefundPayment)
	})
}
