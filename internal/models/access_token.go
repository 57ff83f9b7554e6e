package models

import "time"

const PersonalAccessTokenName = "Personal Access Token"

// AccessToken is the server-side record of an issued bearer token. ID doubles as
// the JWT "jti" claim; the signed string itself is never stored.
type AccessToken struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Revoked   bool      `json:"revoked"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IssuedToken is what a login hands back to the client.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}
