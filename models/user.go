package models

import "time"

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required,max=100"`
}

type User struct {
	ID             int       `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	DisplayName    string    `db:"display_name" json:"displayName"`
	HashedPassword []byte    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
