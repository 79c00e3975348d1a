package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
