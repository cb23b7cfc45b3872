package entity

import (
	"github.com/google/uuid"
)

// Enrollment grants a user access to a course. Created exactly once per
// completed payment; uniqueness on (user_id, course_id) is enforced by the
// schema, not by callers.
type Enrollment struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	CourseID  uuid.UUID `db:"course_id"`
	PaymentID uuid.UUID `db:"payment_id"`
	Progress  float64   `db:"progress"`
	Completed bool      `db:"completed"`
}
