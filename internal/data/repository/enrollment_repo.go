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

type EnrollmentRepository interface {
	// CreateIfAbsent inserts the enrollment unless (user_id, course_id)
	// already exists. Returns whether a row was actually inserted. The
	// uniqueness guard lives in the schema, so concurrent calls for the
	// same pair cannot both insert.
	CreateIfAbsent(ctx context.Context, enrollment *entity.Enrollment) (bool, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error)
}

type enrollmentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEnrollmentRepository(db database.PgxIface, log *zap.Logger) EnrollmentRepository {
	return &enrollmentRepository{
		db:  db,
		log: log.With(zap.String("repository", "enrollment")),
	}
}

func (r *enrollmentRepository) CreateIfAbsent(ctx context.Context, enrollment *entity.Enrollment) (bool, error) {
	query := `
		INSERT INTO enrollments (id, user_id, course_id, payment_id, progress, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		enrollment.ID,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.PaymentID,
		enrollment.Progress,
		enrollment.Completed,
		enrollment.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create enrollment",
			zap.Error(err),
			zap.String("user_id", enrollment.UserID.String()),
			zap.String("course_id", enrollment.CourseID.String()),
		)
		return false, fmt.Errorf("create enrollment for user %s course %s: %w",
			enrollment.UserID.String(), enrollment.CourseID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *enrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, payment_id, progress, completed, created_at
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2
	`

	var enrollment entity.Enrollment
	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.PaymentID,
		&enrollment.Progress,
		&enrollment.Completed,
		&enrollment.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find enrollment",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("course_id", courseID.String()),
		)
		return nil, fmt.Errorf("find enrollment for user %s course %s: %w", userID.String(), courseID.String(), err)
	}

	return &enrollment, nil
}
