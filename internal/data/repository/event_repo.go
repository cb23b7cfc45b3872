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

// EventRepository is the read-side boundary to the event catalog.
type EventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	IncrementRegistered(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRepository(db database.PgxIface, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `
		SELECT id, title, description, event_type, instructor_id, date, duration_minutes,
		       location, price, capacity, registered, event_url, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event entity.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.EventType,
		&event.InstructorID,
		&event.Date,
		&event.DurationMinutes,
		&event.Location,
		&event.Price,
		&event.Capacity,
		&event.Registered,
		&event.EventURL,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}

	return &event, nil
}

func (r *eventRepository) IncrementRegistered(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE events SET registered = registered + 1, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment registered count",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("increment registered for event %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", id.String())
	}

	return nil
}
