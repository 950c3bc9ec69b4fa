package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	Tier         string    `json:"tier"`
	CreatedAt    time.Time `json:"created_at"`
}
