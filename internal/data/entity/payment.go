package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is one purchase attempt. Exactly one of CourseID/EventID is set.
// TransactionID is generated once at creation and acts as the idempotency
// key for retried initiations. Status only ever moves along
// pending→completed, pending→failed, completed→refunded.
type Payment struct {
	Base
	UserID           uuid.UUID     `db:"user_id"`
	CourseID         *uuid.UUID    `db:"course_id"`
	EventID          *uuid.UUID    `db:"event_id"`
	Amount           int64         `db:"amount"` // currency minor units (paise)
	Currency         string        `db:"currency"`
	TransactionID    string        `db:"transaction_id"`
	GatewayOrderID   string        `db:"gateway_order_id"`
	GatewayPaymentID *string       `db:"gateway_payment_id"`
	Status           PaymentStatus `db:"status"`
	GatewayDigest    *string       `db:"gateway_digest"` // opaque diagnostic payload
}

// TargetType reports which purchasable this payment is for.
func (p *Payment) TargetType() string {
	if p.CourseID != nil {
		return "course"
	}
	return "event"
}

// TargetID returns the id of the purchasable.
func (p *Payment) TargetID() uuid.UUID {
	if p.CourseID != nil {
		return *p.CourseID
	}
	if p.EventID != nil {
		return *p.EventID
	}
	return uuid.Nil
}

// IsTerminal reports whether no further transition except an explicit
// refund may be applied.
func (p *Payment) IsTerminal() bool {
	return p.Status != PaymentStatusPending
}
