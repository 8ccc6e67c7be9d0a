package models

import "time"

type EventAction string

const (
	EventUserRegistered     EventAction = "user_registered"
	EventUserSuspended      EventAction = "user_suspended"
	EventUserReactivated    EventAction = "user_reactivated"
	EventEmployeeCreated    EventAction = "employee_created"
	EventVehicleAdded       EventAction = "vehicle_added"
	EventVehicleDeactivated EventAction = "vehicle_deactivated"
	EventRidePublished      EventAction = "ride_published"
	EventRideBooked         EventAction = "ride_booked"
	EventBookingCancelled   EventAction = "booking_cancelled"
	EventRideStarted        EventAction = "ride_started"
	EventRideFinished       EventAction = "ride_finished"
	EventRideCancelled      EventAction = "ride_cancelled"
	EventIncidentDeclared   EventAction = "incident_declared"
	EventIncidentResolved   EventAction = "incident_resolved"
	EventReviewSubmitted    EventAction = "review_submitted"
	EventReviewModerated    EventAction = "review_moderated"
)

// Event is one entry of the append-only activity journal.
type Event struct {
	Action   EventAction            `json:"action" bson:"action"`
	Entity   string                 `json:"entity" bson:"entity"`
	EntityID uint                   `json:"entityId" bson:"entity_id"`
	ActorID  uint                   `json:"actorId,omitempty" bson:"actor_id,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty" bson:"payload,omitempty"`
	At       time.Time              `json:"at" bson:"at"`
}
