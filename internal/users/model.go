package users

import "time"

// Identity is a registered user. PasswordHash is a bcrypt hash; the
// plaintext password is never stored.
type Identity struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
