package models

import "time"

// AdminInviteToken gates admin self-registration. Only the SHA-256 of the
// token is stored; the plaintext is shown once when issued.
type AdminInviteToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TokenHash string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Label     string     `gorm:"size:100" json:"label"`
	CreatedBy *uint      `gorm:"index" json:"created_by"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	UsedBy    *uint      `json:"used_by"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable reports whether the token can still be redeemed at now.
func (t *AdminInviteToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
