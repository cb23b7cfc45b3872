package usecase

import (
	"context"
	"fmt"
	"sync"

	"course-platform/internal/data/entity"
	"course-platform/internal/data/repository"
	"course-platform/pkg/gateway"
	"course-platform/pkg/notification"

	"github.com/google/uuid"
)

// testSignature mirrors how the fake gateway signs an order/payment pair.
func testSignature(orderID, paymentID string) string {
	return "sig:" + orderID + "|" + paymentID
}

// ---------- gateway ----------

type fakeGateway struct {
	mu          sync.Mutex
	orderCalls  int
	refundCalls int
	orderErr    error
	refundErr   error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, _ map[string]string) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	g.orderCalls++
	return &gateway.Order{
		ID:       fmt.Sprintf("order_%03d", g.orderCalls),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, _ string, _ int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return "", g.refundErr
	}
	g.refundCalls++
	return fmt.Sprintf("rfnd_%03d", g.refundCalls), nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == testSignature(orderID, paymentID)
}

func (g *fakeGateway) VerifyWebhookSignature(_ []byte, signature string) bool {
	return signature == "webhook-sig"
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

// ---------- payment ledger ----------

type fakePaymentRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entity.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byID: make(map[uuid.UUID]*entity.Payment)}
}

func clonePayment(p *entity.Payment) *entity.Payment {
	cp := *p
	if p.CourseID != nil {
		id := *p.CourseID
		cp.CourseID = &id
	}
	if p.EventID != nil {
		id := *p.EventID
		cp.EventID = &id
	}
	if p.GatewayPaymentID != nil {
		s := *p.GatewayPaymentID
		cp.GatewayPaymentID = &s
	}
	if p.GatewayDigest != nil {
		s := *p.GatewayDigest
		cp.GatewayDigest = &s
	}
	return &cp
}

func sameTarget(a, b *entity.Payment) bool {
	if a.CourseID != nil && b.CourseID != nil {
		return *a.CourseID == *b.CourseID
	}
	if a.EventID != nil && b.EventID != nil {
		return *a.EventID == *b.EventID
	}
	return false
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Status == entity.PaymentStatusPending && p.UserID == payment.UserID && sameTarget(p, payment) {
			return repository.ErrDuplicatePending
		}
	}
	r.byID[payment.ID] = clonePayment(payment)
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		return clonePayment(p), nil
	}
	return nil, nil
}

func (r *fakePaymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.TransactionID == transactionID {
			return clonePayment(p), nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) FindPendingByTarget(_ context.Context, userID uuid.UUID, courseID, eventID *uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	probe := &entity.Payment{CourseID: courseID, EventID: eventID}
	for _, p := range r.byID {
		if p.Status == entity.PaymentStatusPending && p.UserID == userID && sameTarget(p, probe) {
			return clonePayment(p), nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, clonePayment(p))
		}
	}
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePaymentRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.byID {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakePaymentRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to entity.PaymentStatus, gatewayPaymentID, digest *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return false, fmt.Errorf("payment %s not found", id.String())
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	if gatewayPaymentID != nil {
		s := *gatewayPaymentID
		p.GatewayPaymentID = &s
	}
	if digest != nil {
		s := *digest
		p.GatewayDigest = &s
	}
	return true, nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---------- catalog ----------

type fakeCourseRepo struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*entity.Course
	increments map[uuid.UUID]int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		byID:       make(map[uuid.UUID]*entity.Course),
		increments: make(map[uuid.UUID]int),
	}
}

func (r *fakeCourseRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCourseRepo) IncrementStudents(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.increments[id]++
	return nil
}

type fakeEventRepo struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*entity.Event
	increments map[uuid.UUID]int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:       make(map[uuid.UUID]*entity.Event),
		increments: make(map[uuid.UUID]int),
	}
}

func (r *fakeEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeEventRepo) IncrementRegistered(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.increments[id]++
	return nil
}

// ---------- materialized rows ----------

type enrollmentKey struct {
	userID   uuid.UUID
	courseID uuid.UUID
}

type fakeEnrollmentRepo struct {
	mu   sync.Mutex
	rows map[enrollmentKey]*entity.Enrollment
	err  error
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{rows: make(map[enrollmentKey]*entity.Enrollment)}
}

func (r *fakeEnrollmentRepo) CreateIfAbsent(_ context.Context, enrollment *entity.Enrollment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	key := enrollmentKey{enrollment.UserID, enrollment.CourseID}
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	cp := *enrollment
	r.rows[key] = &cp
	return true, nil
}

func (r *fakeEnrollmentRepo) FindByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rows[enrollmentKey{userID, courseID}]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeEnrollmentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type registrationKey struct {
	userID  uuid.UUID
	eventID uuid.UUID
}

type fakeEventRegistrationRepo struct {
	mu   sync.Mutex
	rows map[registrationKey]*entity.EventRegistration
}

func newFakeEventRegistrationRepo() *fakeEventRegistrationRepo {
	return &fakeEventRegistrationRepo{rows: make(map[registrationKey]*entity.EventRegistration)}
}

func (r *fakeEventRegistrationRepo) CreateIfAbsent(_ context.Context, registration *entity.EventRegistration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := registrationKey{registration.UserID, registration.EventID}
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	cp := *registration
	r.rows[key] = &cp
	return true, nil
}

func (r *fakeEventRegistrationRepo) FindByUserAndEvent(_ context.Context, userID, eventID uuid.UUID) (*entity.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.rows[registrationKey{userID, eventID}]; ok {
		cp := *reg
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeEventRegistrationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// ---------- users ----------

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// ---------- notification ----------

type fakeDispatcher struct {
	mu     sync.Mutex
	events []notification.CompletedEvent
	err    error
}

func (d *fakeDispatcher) PaymentCompleted(_ context.Context, event notification.CompletedEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}
