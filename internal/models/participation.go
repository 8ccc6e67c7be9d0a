package models

import "time"

type ValidationStatus string

const (
	ValidationNotRequested ValidationStatus = "NOT_REQUESTED"
	ValidationPending      ValidationStatus = "PENDING"
	ValidationOK           ValidationStatus = "OK"
)

// Participation is a passenger's booking on a ride. At most one
// non-cancelled row exists per (ride, passenger); see the partial unique
// index created by the migrations.
type Participation struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	RideID         uint             `gorm:"column:ride_id;not null;index" json:"rideId"`
	Ride           *Ride            `gorm:"foreignKey:RideID" json:"ride,omitempty"`
	PassengerID    uint             `gorm:"column:passenger_id;not null;index" json:"passengerId"`
	Passenger      *User            `gorm:"foreignKey:PassengerID" json:"passenger,omitempty"`
	CreditsCharged int              `gorm:"column:credits_charged;not null" json:"creditsCharged"`
	Cancelled      bool             `gorm:"column:cancelled;not null;default:false" json:"cancelled"`
	CancelledAt    *time.Time       `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	Validation     ValidationStatus `gorm:"column:validation;size:20;not null;default:'NOT_REQUESTED'" json:"validation"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (Participation) TableName() string {
	return "participation"
}
