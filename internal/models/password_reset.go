package models

import (
	"time"
)

// PasswordReset stores the sha256 of a one-time reset token; the clear
// token only travels in the email.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"userId"`
	TokenHash string    `gorm:"column:token_hash;size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expiresAt"`
	Used      bool      `gorm:"column:used;not null;default:false" json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PasswordReset) TableName() string {
	return "reinitialisation_mot_de_passe"
}

// IsValid checks if the token is neither expired nor used.
func (p *PasswordReset) IsValid(now time.Time) bool {
	return !p.Used && now.Before(p.ExpiresAt)
}
