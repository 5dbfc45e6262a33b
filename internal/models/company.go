package models

import "time"

// Company is the employer profile. Each employer user owns at most one.
type Company struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name        string    `gorm:"size:200;not null;index" json:"name"`
	Industry    string    `gorm:"size:100;index" json:"industry"`
	Description string    `gorm:"type:text" json:"description"`
	Logo        string    `gorm:"size:255" json:"logo"`
	Website     string    `gorm:"size:255" json:"website"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:50" json:"phone"`
	Address     string    `gorm:"size:255" json:"address"`
	Location    string    `gorm:"size:150" json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ActiveJobs is filled by listing queries only.
	ActiveJobs int64 `gorm:"->;-:migration" json:"active_jobs"`
}
