package repository

import (
	"course-platform/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User              UserRepository
	Session           SessionRepository
	Course            CourseRepository
	Event             EventRepository
	Payment           PaymentRepository
	Enrollment        EnrollmentRepository
	EventRegistration EventRegistrationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:              NewUserRepository(db, log),
		Session:           NewSessionRepository(db, log),
		Course:            NewCourseRepository(db, log),
		Event:             NewEventRepository(db, log),
		Payment:           NewPaymentRepository(db, log),
		Enrollment:        NewEnrollmentRepository(db, log),
		EventRegistration: NewEventRegistrationRepository(db, log),
	}
}
