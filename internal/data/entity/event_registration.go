package entity

import (
	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

// EventRegistration is the event counterpart of Enrollment. Unique per
// (user_id, event_id), references the originating payment for audit.
type EventRegistration struct {
	BaseSimple
	UserID    uuid.UUID          `db:"user_id"`
	EventID   uuid.UUID          `db:"event_id"`
	PaymentID uuid.UUID          `db:"payment_id"`
	Status    RegistrationStatus `db:"status"`
}
