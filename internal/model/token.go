package model

import "time"

// AuthTokenName labels tokens issued by register and login.
const AuthTokenName = "auth_token"

// AccessToken is a persisted bearer token. Only the SHA-256 of the secret is stored.
type AccessToken struct {
	ID         int64
	UserID     int64
	Name       string
	TokenHash  string
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Identity is the authenticated caller: the user and the token they presented.
type Identity struct {
	User    User
	TokenID int64
}
