package usecase

import (
	"context"
	"fmt"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/internal/data/repository"
	"course-platform/pkg/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Materializer turns a completed payment into the durable access grant: an
// enrollment for a course, a registration for an event.
type Materializer interface {
	// Materialize is safe to call more than once for the same payment; the
	// (user, target) uniqueness constraint in the schema makes the second
	// call a no-op regardless of what the caller believes.
	Materialize(ctx context.Context, payment *entity.Payment) error
}

type enrollmentMaterializer struct {
	repo       *repository.Repository
	dispatcher notification.Dispatcher
	log        *zap.Logger
}

func NewMaterializer(repo *repository.Repository, dispatcher notification.Dispatcher, log *zap.Logger) Materializer {
	return &enrollmentMaterializer{
		repo:       repo,
		dispatcher: dispatcher,
		log:        log.With(zap.String("service", "materializer")),
	}
}

func (m *enrollmentMaterializer) Materialize(ctx context.Context, payment *entity.Payment) error {
	if payment.Status != entity.PaymentStatusCompleted {
		return fmt.Errorf("cannot materialize payment %s in status %s", payment.ID.String(), payment.Status)
	}

	var inserted bool
	var err error

	switch {
	case payment.CourseID != nil:
		inserted, err = m.materializeCourse(ctx, payment)
	case payment.EventID != nil:
		inserted, err = m.materializeEvent(ctx, payment)
	default:
		return fmt.Errorf("payment %s has no target", payment.ID.String())
	}

	if err != nil {
		return err
	}

	if !inserted {
		m.log.Info("Target already materialized",
			zap.String("payment_id", payment.ID.String()),
			zap.String("target_type", payment.TargetType()),
			zap.String("target_id", payment.TargetID().String()),
		)
		return nil
	}

	m.log.Info("Payment materialized",
		zap.String("payment_id", payment.ID.String()),
		zap.String("target_type", payment.TargetType()),
		zap.String("target_id", payment.TargetID().String()),
		zap.String("user_id", payment.UserID.String()),
	)

	// Notification failure never rolls back the grant: the payment and the
	// enrollment are authoritative, delivery is at-least-once downstream.
	event := notification.CompletedEvent{
		PaymentID:     payment.ID.String(),
		TransactionID: payment.TransactionID,
		UserID:        payment.UserID.String(),
		TargetType:    payment.TargetType(),
		TargetID:      payment.TargetID().String(),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
	}
	if err := m.dispatcher.PaymentCompleted(ctx, event); err != nil {
		m.log.Error("Failed to dispatch completion notification",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
		)
	}

	return nil
}

func (m *enrollmentMaterializer) materializeCourse(ctx context.Context, payment *entity.Payment) (bool, error) {
	enrollment := &entity.Enrollment{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:    payment.UserID,
		CourseID:  *payment.CourseID,
		PaymentID: payment.ID,
	}

	inserted, err := m.repo.Enrollment.CreateIfAbsent(ctx, enrollment)
	if err != nil {
		return false, fmt.Errorf("materialize enrollment: %w", err)
	}

	if inserted {
		if err := m.repo.Course.IncrementStudents(ctx, *payment.CourseID); err != nil {
			// Counter drift is tolerable; the enrollment row is the grant.
			m.log.Error("Failed to increment course student count",
				zap.Error(err),
				zap.String("course_id", payment.CourseID.String()),
			)
		}
	}

	return inserted, nil
}

func (m *enrollmentMaterializer) materializeEvent(ctx context.Context, payment *entity.Payment) (bool, error) {
	registration := &entity.EventRegistration{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:    payment.UserID,
		EventID:   *payment.EventID,
		PaymentID: payment.ID,
		Status:    entity.RegistrationStatusConfirmed,
	}

	inserted, err := m.repo.EventRegistration.CreateIfAbsent(ctx, registration)
	if err != nil {
		return false, fmt.Errorf("materialize event registration: %w", err)
	}

	if inserted {
		if err := m.repo.Event.IncrementRegistered(ctx, *payment.EventID); err != nil {
			m.log.Error("Failed to increment event registered count",
				zap.Error(err),
				zap.String("event_id", payment.EventID.String()),
			)
		}
	}

	return inserted, nil
}
