package models

import (
	"time"
)

type RideStatus string

const (
	RideStatusPlanned    RideStatus = "PLANNED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
	RideStatusIncident   RideStatus = "INCIDENT"
)

// IsTerminal reports whether no transition may leave the status.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

type Ride struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	DriverID         uint       `gorm:"column:driver_id;not null;index" json:"driverId"`
	Driver           *User      `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	VehicleID        uint       `gorm:"column:vehicle_id;not null;index" json:"vehicleId"`
	Vehicle          *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DepartureCity    string     `gorm:"column:departure_city;size:100;not null;index:idx_covoiturage_search,priority:1" json:"departureCity"`
	DepartureAddress string     `gorm:"column:departure_address;size:255" json:"departureAddress,omitempty"`
	DepartureLat     *float64   `gorm:"column:departure_lat" json:"departureLat,omitempty"`
	DepartureLng     *float64   `gorm:"column:departure_lng" json:"departureLng,omitempty"`
	ArrivalCity      string     `gorm:"column:arrival_city;size:100;not null;index:idx_covoiturage_search,priority:2" json:"arrivalCity"`
	ArrivalAddress   string     `gorm:"column:arrival_address;size:255" json:"arrivalAddress,omitempty"`
	ArrivalLat       *float64   `gorm:"column:arrival_lat" json:"arrivalLat,omitempty"`
	ArrivalLng       *float64   `gorm:"column:arrival_lng" json:"arrivalLng,omitempty"`
	DepartureAt      time.Time  `gorm:"column:departure_at;not null;index:idx_covoiturage_search,priority:3" json:"departureAt"`
	ArrivalAt        time.Time  `gorm:"column:arrival_at;not null" json:"arrivalAt"`
	SeatsTotal       int        `gorm:"column:seats_total;not null" json:"seatsTotal"`
	SeatsAvailable   int        `gorm:"column:seats_available;not null;check:chk_covoiturage_seats,seats_available >= 0" json:"seatsAvailable"`
	PriceCredits     int        `gorm:"column:price_credits;not null" json:"priceCredits"`
	Status           RideStatus `gorm:"column:status;size:20;not null;default:'PLANNED';index" json:"status"`

	IncidentComment    string     `gorm:"column:incident_comment;size:1000" json:"incidentComment,omitempty"`
	IncidentDeclaredAt *time.Time `gorm:"column:incident_declared_at" json:"incidentDeclaredAt,omitempty"`
	IncidentResolved   bool       `gorm:"column:incident_resolved;not null;default:false" json:"incidentResolved"`
	IncidentResolvedAt *time.Time `gorm:"column:incident_resolved_at" json:"incidentResolvedAt,omitempty"`
	IncidentResolvedBy *uint      `gorm:"column:incident_resolved_by" json:"incidentResolvedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Ride) TableName() string {
	return "covoiturage"
}

// Duration is the planned travel time.
func (r *Ride) Duration() time.Duration {
	return r.ArrivalAt.Sub(r.DepartureAt)
}

// IsEco is true for rides made with an electric vehicle. Vehicle must be
// preloaded.
func (r *Ride) IsEco() bool {
	return r.Vehicle != nil && r.Vehicle.IsElectric()
}
