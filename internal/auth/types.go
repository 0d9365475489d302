package auth

import "time"

// Roles are single-value tags, not permission sets. Every account carries
// exactly one.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a shopper or administrator account. Username is the natural
// key; email is only populated through federated login.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
