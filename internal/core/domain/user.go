package domain

import "time"

// User models a registered catalog member.
type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullname"`
	CreatedAt    time.Time `json:"created_at"`
}
