package models

import "time"

// Account is a registered user. Email is the identity key.
type Account struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Location     string    `json:"location"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionMarker records which account is logged in on a device.
type SessionMarker struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	StartedAt time.Time `json:"started_at"`
}
