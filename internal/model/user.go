package model

import (
	"time"
)

type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusLocked UserStatus = "locked"
)

type UserRole string

const (
	RolePractitioner UserRole = "practitioner"
	RoleLearner      UserRole = "learner"
)

type User struct {
	Base
	Email            string     `db:"email" json:"email"`
	Name             string     `db:"name" json:"name"`
	Password         string     `db:"-" json:"password,omitempty"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Role             UserRole   `db:"role" json:"role"`
	Status           UserStatus `db:"status" json:"status"`
	LoginAttempts    int        `db:"login_attempts" json:"-"`
	LastLoginAttempt time.Time  `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
