package domain

import "time"

// TripUpdate is one normalized trip-update row. ScheduleRelationship holds
// the protobuf enum name as text.
type TripUpdate struct {
	AttemptID            string
	TripID               string
	RouteID              string
	StartDate            string
	ScheduleRelationship string
}

// StopTimeUpdate is one per-stop prediction row belonging to a trip update.
// It is related to its TripUpdate by (AttemptID, TripID); the wire format
// assigns trip updates no surrogate key of their own.
type StopTimeUpdate struct {
	AttemptID     string
	TripID        string
	StopID        string
	StopSequence  uint32
	ArrivalTime   *time.Time
	DepartureTime *time.Time
	DelaySeconds  *int32
}

// VehiclePosition is one normalized vehicle-position row. Position sub-fields
// are nil when the feed omitted the position sub-message.
type VehiclePosition struct {
	AttemptID         string
	VehicleID         string
	TripID            string
	RouteID           string
	CurrentStopID     string
	CurrentStatus     string
	Latitude          *float32
	Longitude         *float32
	Bearing           *float32
	Speed             *float32
	PositionTimestamp *time.Time
}

// ServiceAlert is one normalized alert row. Header and description keep only
// the first translation; both are empty strings, never null, when the feed
// carries no translations.
type ServiceAlert struct {
	AttemptID       string
	HeaderText      string
	DescriptionText string
	Cause           string
	Effect          string
}
