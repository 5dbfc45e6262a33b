package models

import (
	"strings"
	"time"
)

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewed    ApplicationStatus = "reviewed"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusHired       ApplicationStatus = "hired"
)

// ApplicationStatuses lists every valid application status.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusReviewed,
	ApplicationStatusShortlisted,
	ApplicationStatusRejected,
	ApplicationStatusHired,
}

// Application is a job seeker's submission for a job. The applicant fields
// are a snapshot taken at submission and are never re-synced from the profile.
type Application struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	JobID       uint              `gorm:"not null;uniqueIndex:idx_applications_job_seeker,priority:1;index" json:"job_id"`
	Job         *Job              `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job,omitempty"`
	JobSeekerID *uint             `gorm:"uniqueIndex:idx_applications_job_seeker,priority:2" json:"job_seeker_id"`
	UserID      uint              `gorm:"not null;index" json:"user_id"`
	FirstName   string            `gorm:"size:100;not null" json:"first_name"`
	Surname     string            `gorm:"size:100;not null" json:"surname"`
	Email       string            `gorm:"size:255;not null" json:"email"`
	Phone       string            `gorm:"size:50" json:"phone"`
	Location    string            `gorm:"size:150" json:"location"`
	CVFile      string            `gorm:"column:cv_file;size:255" json:"cv_file"`
	CoverLetter string            `gorm:"type:text;not null;default:''" json:"cover_letter"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	AppliedAt   time.Time         `gorm:"not null;index" json:"applied_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ParseApplicationStatus normalizes raw into an ApplicationStatus.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	s := ApplicationStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, v := range ApplicationStatuses {
		if v == s {
			return s, true
		}
	}
	return "", false
}
