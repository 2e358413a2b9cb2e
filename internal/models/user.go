package models

import "time"

// User is a business-owner account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
