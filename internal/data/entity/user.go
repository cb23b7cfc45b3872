package entity

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// User carries the subset of the account record the payment engine needs:
// identity for session resolution and contact details for confirmations.
type User struct {
	Base
	Name  string   `db:"name"`
	Email string   `db:"email"`
	Phone *string  `db:"phone"`
	Role  UserRole `db:"role"`
}
