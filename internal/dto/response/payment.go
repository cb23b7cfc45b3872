package response

import (
	"time"

	"course-platform/internal/data/entity"
)

// InitiatePaymentResponse carries everything the client-side payment widget
// needs to open the gateway checkout.
type InitiatePaymentResponse struct {
	TransactionID  string `json:"transaction_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	GatewayKeyID   string `json:"gateway_key_id"`
	UserName       string `json:"user_name,omitempty"`
	UserEmail      string `json:"user_email,omitempty"`
	UserPhone      string `json:"user_phone,omitempty"`
}

type VerifyPaymentResponse struct {
	PaymentID     string               `json:"payment_id"`
	TransactionID string               `json:"transaction_id"`
	Status        entity.PaymentStatus `json:"status"`
	TargetType    string               `json:"target_type"`
	TargetID      string               `json:"target_id"`
}

type TransactionResponse struct {
	ID               string               `json:"id"`
	TransactionID    string               `json:"transaction_id"`
	Amount           int64                `json:"amount"`
	Currency         string               `json:"currency"`
	Status           entity.PaymentStatus `json:"status"`
	TargetType       string               `json:"target_type"`
	TargetID         string               `json:"target_id"`
	GatewayOrderID   string               `json:"gateway_order_id"`
	GatewayPaymentID *string              `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type RefundResponse struct {
	PaymentID       string               `json:"payment_id"`
	TransactionID   string               `json:"transaction_id"`
	Status          entity.PaymentStatus `json:"status"`
	GatewayRefundID string               `json:"gateway_refund_id,omitempty"`
}

// Helper converters

func PaymentToTransactionResponse(payment *entity.Payment) TransactionResponse {
	return TransactionResponse{
		ID:               payment.ID.String(),
		TransactionID:    payment.TransactionID,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Status:           payment.Status,
		TargetType:       payment.TargetType(),
		TargetID:         payment.TargetID().String(),
		GatewayOrderID:   payment.GatewayOrderID,
		GatewayPaymentID: payment.GatewayPaymentID,
		CreatedAt:        payment.CreatedAt,
		UpdatedAt:        payment.UpdatedAt,
	}
}

func PaymentToVerifyResponse(payment *entity.Payment) *VerifyPaymentResponse {
	return &VerifyPaymentResponse{
		PaymentID:     payment.ID.String(),
		TransactionID: payment.TransactionID,
		Status:        payment.Status,
		TargetType:    payment.TargetType(),
		TargetID:      payment.TargetID().String(),
	}
}
