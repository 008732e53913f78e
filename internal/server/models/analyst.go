package models

import "time"

type Analyst struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
