package model

import "time"

// User represents a registered customer of the return portal.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// Admin represents a retailer operator allowed into the admin console.
type Admin struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// Role distinguishes customer sessions from admin sessions.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)
