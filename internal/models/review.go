package models

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

type Review struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	ParticipationID uint         `gorm:"column:participation_id;not null;uniqueIndex" json:"participationId"`
	RideID          uint         `gorm:"column:ride_id;not null;index" json:"rideId"`
	AuthorID        uint         `gorm:"column:author_id;not null" json:"authorId"`
	Author          *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	DriverID        uint         `gorm:"column:driver_id;not null;index" json:"driverId"`
	Rating          int          `gorm:"column:rating;not null;check:chk_avis_rating,rating BETWEEN 1 AND 5" json:"rating"`
	Comment         string       `gorm:"column:comment;size:1000" json:"comment,omitempty"`
	Status          ReviewStatus `gorm:"column:status;size:20;not null;default:'PENDING';index" json:"status"`
	ModeratedBy     *uint        `gorm:"column:moderated_by" json:"moderatedBy,omitempty"`
	ModeratedAt     *time.Time   `gorm:"column:moderated_at" json:"moderatedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

func (Review) TableName() string {
	return "avis"
}

// PlatformCommission records the credits kept by the platform when a
// passenger validates a trip.
type PlatformCommission struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ParticipationID uint      `gorm:"column:participation_id;not null;uniqueIndex" json:"participationId"`
	RideID          uint      `gorm:"column:ride_id;not null;index" json:"rideId"`
	Credits         int       `gorm:"column:credits;not null" json:"credits"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
}

func (PlatformCommission) TableName() string {
	return "commission_plateforme"
}
