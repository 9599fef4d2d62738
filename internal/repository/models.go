package repository

import (
	"time"

	"github.com/transitops/transit-collector/internal/domain"
)

// FetchAttemptModel is the persistence model for the fetch_attempts table.
type FetchAttemptModel struct {
	ID            string     `gorm:"type:uuid;primaryKey"`
	FeedName      string     `gorm:"type:varchar(64);not null"`
	FeedURL       string     `gorm:"type:text;not null"`
	FetchedAt     time.Time  `gorm:"type:timestamptz;not null"`
	FeedTimestamp *time.Time `gorm:"type:timestamptz"`
	Success       bool       `gorm:"not null"`
	ErrorDetail   *string    `gorm:"type:text"`
}

func (FetchAttemptModel) TableName() string {
	return "fetch_attempts"
}

// TripUpdateModel is the persistence model for trip_updates.
type TripUpdateModel struct {
	ID                   int64  `gorm:"primaryKey;autoIncrement"`
	AttemptID            string `gorm:"type:uuid;not null;index:idx_trip_updates_attempt_id"`
	TripID               string `gorm:"type:varchar(128);not null"`
	RouteID              string `gorm:"type:varchar(64)"`
	StartDate            string `gorm:"type:varchar(8)"`
	ScheduleRelationship string `gorm:"type:varchar(32)"`
}

func (TripUpdateModel) TableName() string {
	return "trip_updates"
}

// StopTimeUpdateModel is the persistence model for stop_time_updates. Rows
// relate to trip_updates by (attempt_id, trip_id); the wire format gives trip
// updates no key of their own.
type StopTimeUpdateModel struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	AttemptID     string     `gorm:"type:uuid;not null;index:idx_stop_time_updates_attempt_trip,priority:1"`
	TripID        string     `gorm:"type:varchar(128);not null;index:idx_stop_time_updates_attempt_trip,priority:2"`
	StopID        string     `gorm:"type:varchar(64)"`
	StopSequence  uint32     `gorm:"not null;default:0"`
	ArrivalTime   *time.Time `gorm:"type:timestamptz"`
	DepartureTime *time.Time `gorm:"type:timestamptz"`
	DelaySeconds  *int32     `gorm:"type:int"`
}

func (StopTimeUpdateModel) TableName() string {
	return "stop_time_updates"
}

// VehiclePositionModel is the persistence model for vehicle_positions.
type VehiclePositionModel struct {
	ID                int64      `gorm:"primaryKey;autoIncrement"`
	AttemptID         string     `gorm:"type:uuid;not null;index:idx_vehicle_positions_attempt_id"`
	VehicleID         string     `gorm:"type:varchar(128)"`
	TripID            string     `gorm:"type:varchar(128)"`
	RouteID           string     `gorm:"type:varchar(64)"`
	CurrentStopID     string     `gorm:"type:varchar(64)"`
	CurrentStatus     string     `gorm:"type:varchar(32)"`
	Latitude          *float32   `gorm:"type:real"`
	Longitude         *float32   `gorm:"type:real"`
	Bearing           *float32   `gorm:"type:real"`
	Speed             *float32   `gorm:"type:real"`
	PositionTimestamp *time.Time `gorm:"type:timestamptz"`
}

func (VehiclePositionModel) TableName() string {
	return "vehicle_positions"
}

// ServiceAlertModel is the persistence model for service_alerts.
type ServiceAlertModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	AttemptID       string `gorm:"type:uuid;not null;index:idx_service_alerts_attempt_id"`
	HeaderText      string `gorm:"type:text;not null"`
	DescriptionText string `gorm:"type:text;not null"`
	Cause           string `gorm:"type:varchar(32)"`
	Effect          string `gorm:"type:varchar(32)"`
}

func (ServiceAlertModel) TableName() string {
	return "service_alerts"
}

// EquipmentOutageModel is the persistence model for equipment_outages.
type EquipmentOutageModel struct {
	ID              int64                 `gorm:"primaryKey;autoIncrement"`
	FeedType        domain.OutageFeedType `gorm:"type:varchar(16);not null"`
	Station         string                `gorm:"type:varchar(128)"`
	Borough         string                `gorm:"type:varchar(32)"`
	TrainLines      string                `gorm:"type:varchar(64)"`
	EquipmentID     string                `gorm:"type:varchar(32);not null"`
	EquipmentType   string                `gorm:"type:varchar(8)"`
	ADA             string                `gorm:"type:varchar(4)"`
	OutageDate      *time.Time            `gorm:"type:timestamptz"`
	EstimatedReturn *time.Time            `gorm:"type:timestamptz"`
	Reason          string                `gorm:"type:text"`
	Serving         string                `gorm:"type:text"`
	IsUpcoming      string                `gorm:"type:varchar(4)"`
	IsMaintenance   string                `gorm:"type:varchar(4)"`
	CreatedAt       time.Time
}

func (EquipmentOutageModel) TableName() string {
	return "equipment_outages"
}

// EquipmentUnitModel is the persistence model for equipment_units.
type EquipmentUnitModel struct {
	ID            int64    `gorm:"primaryKey;autoIncrement"`
	EquipmentID   string   `gorm:"type:varchar(32);not null"`
	EquipmentType string   `gorm:"type:varchar(8)"`
	Station       string   `gorm:"type:varchar(128)"`
	Borough       string   `gorm:"type:varchar(32)"`
	TrainLines    string   `gorm:"type:varchar(64)"`
	Latitude      *float64 `gorm:"type:double precision"`
	Longitude     *float64 `gorm:"type:double precision"`
	ADA           string   `gorm:"type:varchar(4)"`
	Serving       string   `gorm:"type:text"`
	Status        string   `gorm:"type:varchar(32)"`
	Notes         string   `gorm:"type:text"`
	CreatedAt     time.Time
}

func (EquipmentUnitModel) TableName() string {
	return "equipment_units"
}

func attemptModelFromDomain(a *domain.FetchAttempt) *FetchAttemptModel {
	if a == nil {
		return nil
	}

	return &FetchAttemptModel{
		ID:            a.ID,
		FeedName:      a.FeedName,
		FeedURL:       a.FeedURL,
		FetchedAt:     a.FetchedAt,
		FeedTimestamp: a.FeedTimestamp,
		Success:       a.Success,
		ErrorDetail:   a.ErrorDetail,
	}
}

func attemptModelToDomain(m *FetchAttemptModel) *domain.FetchAttempt {
	if m == nil {
		return nil
	}

	return &domain.FetchAttempt{
		ID:            m.ID,
		FeedName:      m.FeedName,
		FeedURL:       m.FeedURL,
		FetchedAt:     m.FetchedAt,
		FeedTimestamp: m.FeedTimestamp,
		Success:       m.Success,
		ErrorDetail:   m.ErrorDetail,
	}
}

func tripUpdateModelFromDomain(r domain.TripUpdate) TripUpdateModel {
	return TripUpdateModel{
		AttemptID:            r.AttemptID,
		TripID:               r.TripID,
		RouteID:              r.RouteID,
		StartDate:            r.StartDate,
		ScheduleRelationship: r.ScheduleRelationship,
	}
}

func stopTimeUpdateModelFromDomain(r domain.StopTimeUpdate) StopTimeUpdateModel {
	return StopTimeUpdateModel{
		AttemptID:     r.AttemptID,
		TripID:        r.TripID,
		StopID:        r.StopID,
		StopSequence:  r.StopSequence,
		ArrivalTime:   r.ArrivalTime,
		DepartureTime: r.DepartureTime,
		DelaySeconds:  r.DelaySeconds,
	}
}

func vehiclePositionModelFromDomain(r domain.VehiclePosition) VehiclePositionModel {
	return VehiclePositionModel{
		AttemptID:         r.AttemptID,
		VehicleID:         r.VehicleID,
		TripID:            r.TripID,
		RouteID:           r.RouteID,
		CurrentStopID:     r.CurrentStopID,
		CurrentStatus:     r.CurrentStatus,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Bearing:           r.Bearing,
		Speed:             r.Speed,
		PositionTimestamp: r.PositionTimestamp,
	}
}

func serviceAlertModelFromDomain(r domain.ServiceAlert) ServiceAlertModel {
	return ServiceAlertModel{
		AttemptID:       r.AttemptID,
		HeaderText:      r.HeaderText,
		DescriptionText: r.DescriptionText,
		Cause:           r.Cause,
		Effect:          r.Effect,
	}
}

func equipmentOutageModelFromDomain(r domain.EquipmentOutage) EquipmentOutageModel {
	return EquipmentOutageModel{
		FeedType:        r.FeedType,
		Station:         r.Station,
		Borough:         r.Borough,
		TrainLines:      r.TrainLines,
		EquipmentID:     r.EquipmentID,
		EquipmentType:   r.EquipmentType,
		ADA:             r.ADA,
		OutageDate:      r.OutageDate,
		EstimatedReturn: r.EstimatedReturn,
		Reason:          r.Reason,
		Serving:         r.Serving,
		IsUpcoming:      r.IsUpcoming,
		IsMaintenance:   r.IsMaintenance,
	}
}

func equipmentUnitModelFromDomain(r domain.EquipmentUnit) EquipmentUnitModel {
	return EquipmentUnitModel{
		EquipmentID:   r.EquipmentID,
		EquipmentType: r.EquipmentType,
		Station:       r.Station,
		Borough:       r.Borough,
		TrainLines:    r.TrainLines,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		ADA:           r.ADA,
		Serving:       r.Serving,
		Status:        r.Status,
		Notes:         r.Notes,
	}
}
