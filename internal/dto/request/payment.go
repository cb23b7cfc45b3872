package request

// InitiatePaymentRequest starts a purchase. Exactly one of CourseID/EventID
// must be set; the service enforces that beyond the tag-level checks.
// Amount is in currency minor units and must match the catalog price.
type InitiatePaymentRequest struct {
	CourseID *string `json:"course_id,omitempty" validate:"omitempty,uuid4"`
	EventID  *string `json:"event_id,omitempty" validate:"omitempty,uuid4"`
	Amount   int64   `json:"amount" validate:"required,gt=0"`
}

// VerifyPaymentRequest confirms a payment. The same shape arrives from the
// client redirect and from the gateway webhook.
type VerifyPaymentRequest struct {
	TransactionID    string `json:"transaction_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}
