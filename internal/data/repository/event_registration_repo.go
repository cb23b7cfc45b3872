package repository

import (
	"context"
	"fmt"

	"course-platform/internal/data/entity"
	"course-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EventRegistrationRepository interface {
	// CreateIfAbsent inserts the registration unless (user_id, event_id)
	// already exists. Returns whether a row was actually inserted.
	CreateIfAbsent(ctx context.Context, registration *entity.EventRegistration) (bool, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*entity.EventRegistration, error)
}

type eventRegistrationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRegistrationRepository(db database.PgxIface, log *zap.Logger) EventRegistrationRepository {
	return &eventRegistrationRepository{
		db:  db,
		log: log.With(zap.String("repository", "event_registration")),
	}
}

func (r *eventRegistrationRepository) CreateIfAbsent(ctx context.Context, registration *entity.EventRegistration) (bool, error) {
	query := `
		INSERT INTO event_registrations (id, user_id, event_id, payment_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		registration.ID,
		registration.UserID,
		registration.EventID,
		registration.PaymentID,
		registration.Status,
		registration.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create event registration",
			zap.Error(err),
			zap.String("user_id", registration.UserID.String()),
			zap.String("event_id", registration.EventID.String()),
		)
		return false, fmt.Errorf("create registration for user %s event %s: %w",
			registration.UserID.String(), registration.EventID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *eventRegistrationRepository) FindByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*entity.EventRegistration, error) {
	query := `
		SELECT id, user_id, event_id, payment_id, status, created_at
		FROM event_registrations
		WHERE user_id = $1 AND event_id = $2
	`

	var registration entity.EventRegistration
	err := r.db.QueryRow(ctx, query, userID, eventID).Scan(
		&registration.ID,
		&registration.UserID,
		&registration.EventID,
		&registration.PaymentID,
		&registration.Status,
		&registration.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event registration",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("find registration for user %s event %s: %w", userID.String(), eventID.String(), err)
	}

	return &registration, nil
}
