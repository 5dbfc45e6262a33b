package models

import "time"

// SavedJob is a job bookmarked by a job seeker.
type SavedJob struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	JobSeekerID uint      `gorm:"not null;uniqueIndex:idx_saved_jobs_seeker_job,priority:1" json:"job_seeker_id"`
	JobID       uint      `gorm:"not null;uniqueIndex:idx_saved_jobs_seeker_job,priority:2;index" json:"job_id"`
	Job         *Job      `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
