package usecase

import "errors"

// Service-level error taxonomy. Handlers match these with errors.Is to pick
// status codes; gateway transport errors (gateway.ErrUnavailable,
// gateway.ErrRejected) pass through wrapped.
var (
	// ErrTargetNotFound: the course or event does not exist.
	ErrTargetNotFound = errors.New("purchase target not found")
	// ErrAmountMismatch: caller-supplied amount diverges from the catalog
	// price. Guards against client-side price tampering.
	ErrAmountMismatch = errors.New("amount does not match target price")
	// ErrEventFull: the event has no remaining capacity.
	ErrEventFull = errors.New("event is at capacity")
	// ErrPaymentNotFound: no payment row for the transaction id.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentAlreadyFinalized: the payment is failed or refunded; nothing
	// further can be done with it.
	ErrPaymentAlreadyFinalized = errors.New("payment already finalized")
	// ErrSignatureInvalid: the gateway signature did not match; the payment
	// has been transitioned to failed.
	ErrSignatureInvalid = errors.New("payment signature invalid")
	// ErrNotRefundable: only completed payments can be refunded.
	ErrNotRefundable = errors.New("payment is not refundable")
)

// errTransitionUnresolved bounds the verify retry loop. With an atomic CAS
// a lost race always resolves on re-read, so this never reaches a caller.
var errTransitionUnresolved = errors.New("concurrent transition could not be resolved")
