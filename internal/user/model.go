package user

import "time"

// User represents a marketplace account.
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	CreatedAt    time.Time
}
