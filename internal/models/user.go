// Package models contains data structures for the job board's domain models.
package models

import (
	"strings"
	"time"
)

// Role is the fixed account type chosen at registration.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployer  Role = "employer"
	RoleJobSeeker Role = "jobseeker"
)

// UserStatus gates login.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents an account on the job board.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	Status    UserStatus `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsActive reports whether the user may log in.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// ParseRole normalizes a role string. ok is false for unknown roles.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployer:
		return RoleEmployer, true
	case RoleJobSeeker, "job_seeker", "seeker":
		return RoleJobSeeker, true
	}
	return "", false
}

// ParseUserStatus normalizes a user status string.
func ParseUserStatus(raw string) (UserStatus, bool) {
	switch UserStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case UserStatusActive:
		return UserStatusActive, true
	case UserStatusInactive:
		return UserStatusInactive, true
	}
	return "", false
}
