package adaptor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"course-platform/internal/dto/request"
	"course-platform/internal/dto/response"
	"course-platform/internal/usecase"
	"course-platform/pkg/gateway"

	"go.uber.org/zap"
)

type stubService struct {
	usecase.PaymentService
	verifyResp *response.VerifyPaymentResponse
	verifyErr  error
	verifyReqs []*request.VerifyPaymentRequest
}

func (s *stubService) VerifyPayment(_ context.Context, req *request.VerifyPaymentRequest) (*response.VerifyPaymentResponse, error) {
	s.verifyReqs = append(s.verifyReqs, req)
	return s.verifyResp, s.verifyErr
}

type stubGateway struct {
	gateway.Client
	webhookSig string
}

func (g *stubGateway) VerifyWebhookSignature(_ []byte, signature string) bool {
	return signature == g.webhookSig
}

func TestWebhook(t *testing.T) {
	const payload = `{"transaction_id":"TXN-1","gateway_payment_id":"pay_001","signature":"abc"}`

	newHandler := func(service *stubService) *PaymentHandler {
		return NewPaymentHandler(service, &stubGateway{webhookSig: "good-sig"}, zap.NewNop())
	}

	post := func(h *PaymentHandler, body, sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewBufferString(body))
		if sig != "" {
			req.Header.Set("X-Razorpay-Signature", sig)
		}
		w := httptest.NewRecorder()
		h.Webhook(w, req)
		return w
	}

	t.Run("rejects missing signature", func(t *testing.T) {
		service := &stubService{}
		w := post(newHandler(service), payload, "")

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
		if len(service.verifyReqs) != 0 {
			t.Errorf("service called despite rejected signature")
		}
	})

	t.Run("rejects wrong signature", func(t *testing.T) {
		service := &stubService{}
		w := post(newHandler(service), payload, "bad-sig")

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("routes authenticated payload into verify", func(t *testing.T) {
		service := &stubService{verifyResp: &response.VerifyPaymentResponse{
			TransactionID: "TXN-1",
			Status:        "completed",
		}}
		w := post(newHandler(service), payload, "good-sig")

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
		if len(service.verifyReqs) != 1 {
			t.Fatalf("verify calls = %d, want 1", len(service.verifyReqs))
		}
		if got := service.verifyReqs[0].TransactionID; got != "TXN-1" {
			t.Errorf("transaction id = %s", got)
		}
	})

	t.Run("redelivery for a finalized payment is a 200", func(t *testing.T) {
		service := &stubService{verifyErr: fmt.Errorf("wrapped: %w", usecase.ErrPaymentAlreadyFinalized)}
		w := post(newHandler(service), payload, "good-sig")

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 so the gateway stops retrying", w.Code)
		}
	})

	t.Run("invalid signature error maps to 402", func(t *testing.T) {
		service := &stubService{verifyErr: fmt.Errorf("wrapped: %w", usecase.ErrSignatureInvalid)}
		w := post(newHandler(service), payload, "good-sig")

		if w.Code != http.StatusPaymentRequired {
			t.Errorf("status = %d, want 402", w.Code)
		}
	})
}
