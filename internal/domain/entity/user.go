package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// PasswordHash holds a bcrypt digest; the raw password is never stored.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
