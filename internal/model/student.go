package model

import (
	"time"

	"github.com/google/uuid"
)

// Student is a login identity for the student portal. The attempt
// engine never reads this table; attempts carry the student id as an
// opaque string.
type Student struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// StudentLoginRequest is the student login payload.
type StudentLoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
}

// CreateStudentRequest is the admin payload for registering a student.
type CreateStudentRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=255"`
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
}
