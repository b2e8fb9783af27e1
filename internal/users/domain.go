package users

import "time"

// User represents a user account. Superusers bypass membership scoping.
type User struct {
	ID          int64
	Email       string
	Name        string
	IsActive    bool
	IsSuperuser bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
