package auth

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Ambulatori   []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
