package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeWorkshop   EventType = "workshop"
	EventTypeLiveEvent  EventType = "live_event"
	EventTypeOnlineQuiz EventType = "online_quiz"
)

type Event struct {
	Base
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	EventType       EventType `db:"event_type"`
	InstructorID    uuid.UUID `db:"instructor_id"`
	Date            time.Time `db:"date"`
	DurationMinutes int       `db:"duration_minutes"`
	Location        *string   `db:"location"`
	Price           int64     `db:"price"` // minor units
	Capacity        int       `db:"capacity"`
	Registered      int       `db:"registered"`
	EventURL        *string   `db:"event_url"`
}

// IsFull reports whether no more registrations fit.
func (e *Event) IsFull() bool {
	return e.Capacity > 0 && e.Registered >= e.Capacity
}
