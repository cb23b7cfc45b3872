package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"course-platform/internal/dto/request"
	"course-platform/internal/usecase"
	"course-platform/pkg/gateway"
	"course-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	gateway gateway.Client
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, gatewayClient gateway.Client, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		gateway: gatewayClient,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// InitiatePayment handles POST /api/payments/create (protected)
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payment, err := h.service.InitiatePayment(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "initiate payment")
		return
	}

	utils.ResponseCreated(w, "success", payment)
}

// VerifyPayment handles POST /api/payments/verify (protected)
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// Webhook handles POST /api/payments/webhook (gateway server-to-server).
// The body is authenticated with the webhook HMAC before it is routed into
// the same VerifyPayment operation the client redirect uses.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.gateway.VerifyWebhookSignature(body, signature) {
		h.log.Warn("Webhook signature mismatch", zap.String("ip", r.RemoteAddr))
		utils.ResponseUnauthorized(w, "Invalid webhook signature")
		return
	}

	var req request.VerifyPaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid webhook payload", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), &req)
	if err != nil {
		// A redelivered webhook for a finalized payment needs a 2xx or the
		// gateway keeps retrying.
		if errors.Is(err, usecase.ErrPaymentAlreadyFinalized) {
			utils.ResponseSuccess(w, "no further action", nil)
			return
		}
		h.handleServiceError(w, err, "process webhook")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// GetTransactions handles GET /api/payments/transactions (protected)
func (h *PaymentHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	transactions, err := h.service.GetUserTransactions(r.Context(), userID.String(), req)
	if err != nil {
		h.handleServiceError(w, err, "get transactions")
		return
	}

	utils.ResponseSuccess(w, "success", transactions)
}

// RefundPayment handles POST /api/admin/payments/{id}/refund (admin only)
func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		utils.ResponseBadRequest(w, "Payment ID is required", nil)
		return
	}

	result, err := h.service.RefundPayment(r.Context(), paymentID)
	if err != nil {
		h.handleServiceError(w, err, "refund payment")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// handleServiceError maps the service error taxonomy to HTTP responses.
func (h *PaymentHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrPaymentNotFound), errors.Is(err, usecase.ErrTargetNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrAmountMismatch), errors.Is(err, usecase.ErrEventFull):
		h.log.Warn(operation+" failed - validation", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrPaymentAlreadyFinalized), errors.Is(err, usecase.ErrNotRefundable):
		h.log.Warn(operation+" failed - already finalized", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrSignatureInvalid):
		h.log.Warn(operation+" failed - signature invalid", zap.Error(err))
		utils.ResponsePaymentRequired(w, err.Error())

	case errors.Is(err, gateway.ErrRejected):
		h.log.Warn(operation+" failed - gateway rejected", zap.Error(err))
		utils.ResponsePaymentRequired(w, err.Error())

	case errors.Is(err, gateway.ErrUnavailable):
		h.log.Error(operation+" failed - gateway unavailable", zap.Error(err))
		utils.ResponseBadGateway(w, "Payment gateway unavailable, please retry")

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"):
		h.log.Warn(operation+" failed - bad input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
