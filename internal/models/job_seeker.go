package models

import "time"

// JobSeeker is the candidate profile attached to a jobseeker user.
type JobSeeker struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserID         uint         `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName      string       `gorm:"size:100" json:"first_name"`
	Surname        string       `gorm:"size:100" json:"surname"`
	Phone          string       `gorm:"size:50" json:"phone"`
	Location       string       `gorm:"size:150" json:"location"`
	Headline       string       `gorm:"size:200" json:"headline"`
	Summary        string       `gorm:"type:text" json:"summary"`
	Resume         string       `gorm:"size:255" json:"resume"`
	ProfilePicture string       `gorm:"size:255" json:"profile_picture"`
	Education      []Education  `gorm:"foreignKey:JobSeekerID;constraint:OnDelete:CASCADE" json:"education,omitempty"`
	Experience     []Experience `gorm:"foreignKey:JobSeekerID;constraint:OnDelete:CASCADE" json:"experience,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName keeps the historical plural used by the schema.
func (JobSeeker) TableName() string {
	return "job_seekers"
}

// Education is one entry of a job seeker's education history.
type Education struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	JobSeekerID   uint       `gorm:"not null;index" json:"job_seeker_id"`
	Institution   string     `gorm:"size:200;not null" json:"institution"`
	Qualification string     `gorm:"size:200;not null" json:"qualification"`
	FieldOfStudy  string     `gorm:"size:200" json:"field_of_study"`
	StartDate     *time.Time `gorm:"type:date" json:"start_date"`
	EndDate       *time.Time `gorm:"type:date" json:"end_date"`
	Description   string     `gorm:"type:text" json:"description"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the education table name.
func (Education) TableName() string {
	return "education"
}

// Experience is one entry of a job seeker's work history.
type Experience struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	JobSeekerID uint       `gorm:"not null;index" json:"job_seeker_id"`
	Company     string     `gorm:"size:200;not null" json:"company"`
	Position    string     `gorm:"size:200;not null" json:"position"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	IsCurrent   bool       `gorm:"not null;default:false" json:"is_current"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the experience table name.
func (Experience) TableName() string {
	return "experience"
}
