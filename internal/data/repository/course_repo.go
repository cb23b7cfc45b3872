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

// CourseRepository is the read-side boundary to the catalog. Course CRUD
// lives in the catalog service; the payment engine only needs prices and
// the enrolled-student counter.
type CourseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	IncrementStudents(ctx context.Context, id uuid.UUID) error
}

type courseRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCourseRepository(db database.PgxIface, log *zap.Logger) CourseRepository {
	return &courseRepository{
		db:  db,
		log: log.With(zap.String("repository", "course")),
	}
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	query := `
		SELECT id, title, description, category, level, price, duration_weeks,
		       instructor_id, students_count, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var course entity.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Category,
		&course.Level,
		&course.Price,
		&course.DurationWeeks,
		&course.InstructorID,
		&course.StudentsCount,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find course by ID",
			zap.Error(err),
			zap.String("course_id", id.String()),
		)
		return nil, fmt.Errorf("find course by ID %s: %w", id.String(), err)
	}

	return &course, nil
}

func (r *courseRepository) IncrementStudents(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE courses SET students_count = students_count + 1, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment student count",
			zap.Error(err),
			zap.String("course_id", id.String()),
		)
		return fmt.Errorf("increment students for course %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("course %s not found", id.String())
	}

	return nil
}
