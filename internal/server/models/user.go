// Package models defines server-side data models persisted in the database.
package models

import "time"

// Roles assignable to a user. Admins have cross-cutting read access to all
// files and all audit entries without being an owner.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// User is an identity record. Passwords are stored bcrypt-hashed, never in
// plaintext. Users are never deleted in normal operation.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
