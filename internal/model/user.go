// Package model defines domain entities for the application.
package model

import "time"

// User represents a stored user record.
// ID and CreatedAt are assigned by the database and never accepted from clients.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser is the client-submitted payload for creating a user.
type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
