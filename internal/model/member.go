package model

import "time"

// Roles assignable to a member. Signup always produces RoleUser; RoleAdmin
// accounts are provisioned out of band.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Member is a registered account. PasswordHash is a bcrypt digest and never
// leaves the server.
type Member struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
