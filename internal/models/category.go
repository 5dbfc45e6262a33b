package models

import "time"

// Category is reference data used to tag and filter jobs.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Icon      string    `gorm:"size:100" json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}
