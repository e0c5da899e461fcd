package models

import "time"

type Student struct {
	ID          int64
	StudentCode string
	FullName    string
	Email       string
	Course      string
	Description string
	CreatedAt   time.Time
}
