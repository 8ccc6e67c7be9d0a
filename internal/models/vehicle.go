package models

import "time"

type Energy string

const (
	EnergyElectric Energy = "ELECTRIC"
	EnergyHybrid   Energy = "HYBRID"
	EnergyPetrol   Energy = "PETROL"
	EnergyDiesel   Energy = "DIESEL"
)

// Vehicle rows are never removed: rides keep pointing at them after the
// owner deactivates the car.
type Vehicle struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OwnerID         uint       `gorm:"column:owner_id;not null;index" json:"ownerId"`
	Plate           string     `gorm:"column:plate;size:20;not null" json:"plate"`
	Brand           string     `gorm:"column:brand;size:50;not null" json:"brand"`
	Model           string     `gorm:"column:model;size:50;not null" json:"model"`
	Color           string     `gorm:"column:color;size:30" json:"color,omitempty"`
	Energy          Energy     `gorm:"column:energy;size:20;not null" json:"energy"`
	Seats           int        `gorm:"column:seats;not null" json:"seats"`
	FirstRegistered *time.Time `gorm:"column:first_registered" json:"firstRegistered,omitempty"`
	Active          bool       `gorm:"column:active;not null;default:true" json:"active"`
	DeactivatedAt   *time.Time `gorm:"column:deactivated_at" json:"deactivatedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Owner           *User      `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Vehicle) TableName() string {
	return "voiture"
}

func (v *Vehicle) IsElectric() bool {
	return v.Energy == EnergyElectric
}
