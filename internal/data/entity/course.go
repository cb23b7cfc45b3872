package entity

import (
	"github.com/google/uuid"
)

type Course struct {
	Base
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Category      string    `db:"category"`
	Level         string    `db:"level"`
	Price         int64     `db:"price"` // minor units
	DurationWeeks int       `db:"duration_weeks"`
	InstructorID  uuid.UUID `db:"instructor_id"`
	StudentsCount int       `db:"students_count"`
}
