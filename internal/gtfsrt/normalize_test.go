package gtfsrt

import (
	"reflect"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func tripUpdateEntity() *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String("1"),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{
				TripId:               proto.String("T1"),
				RouteId:              proto.String("R1"),
				StartDate:            proto.String("20240101"),
				ScheduleRelationship: gtfs.TripDescriptor_SCHEDULED.Enum(),
			},
			StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
				{
					StopId: proto.String("S1"),
				},
				{
					StopId:       proto.String("S2"),
					StopSequence: proto.Uint32(2),
					Arrival: &gtfs.TripUpdate_StopTimeEvent{
						Time:  proto.Int64(1_704_100_000),
						Delay: proto.Int32(30),
					},
				},
			},
		},
	}
}

func TestNormalizeTripUpdateScenario(t *testing.T) {
	t.Parallel()

	message := &gtfs.FeedMessage{Entity: []*gtfs.FeedEntity{tripUpdateEntity()}}

	rows := Normalize("attempt-1", message)

	if len(rows.TripUpdates) != 1 {
		t.Fatalf("trip updates = %d, want 1", len(rows.TripUpdates))
	}
	trip := rows.TripUpdates[0]
	if trip.AttemptID != "attempt-1" || trip.TripID != "T1" || trip.RouteID != "R1" {
		t.Fatalf("trip row = %+v", trip)
	}
	if trip.StartDate != "20240101" {
		t.Fatalf("start date = %q, want 20240101", trip.StartDate)
	}
	if trip.ScheduleRelationship != "SCHEDULED" {
		t.Fatalf("schedule relationship = %q, want SCHEDULED", trip.ScheduleRelationship)
	}

	if len(rows.StopTimeUpdates) != 2 {
		t.Fatalf("stop time updates = %d, want 2", len(rows.StopTimeUpdates))
	}

	first := rows.StopTimeUpdates[0]
	if first.StopID != "S1" {
		t.Fatalf("first stop id = %q, want S1", first.StopID)
	}
	if first.ArrivalTime != nil || first.DepartureTime != nil || first.DelaySeconds != nil {
		t.Fatalf("first stop row should be all null, got %+v", first)
	}

	second := rows.StopTimeUpdates[1]
	if second.ArrivalTime == nil {
		t.Fatal("second stop arrival should be populated")
	}
	wantArrival := time.Unix(1_704_100_000, 0).UTC()
	if !second.ArrivalTime.Equal(wantArrival) {
		t.Fatalf("arrival = %s, want %s", second.ArrivalTime, wantArrival)
	}
	if second.DelaySeconds == nil || *second.DelaySeconds != 30 {
		t.Fatalf("delay = %v, want 30", second.DelaySeconds)
	}
	if second.DepartureTime != nil {
		t.Fatalf("departure = %v, want nil", second.DepartureTime)
	}
	if second.TripID != "T1" {
		t.Fatalf("second stop trip id = %q, want T1", second.TripID)
	}
}

func TestNormalizeZeroValuesAreAbsent(t *testing.T) {
	t.Parallel()

	message := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("1"),
				TripUpdate: &gtfs.TripUpdate{
					Trip: &gtfs.TripDescriptor{TripId: proto.String("T2")},
					StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
						{
							StopId: proto.String("S1"),
							Arrival: &gtfs.TripUpdate_StopTimeEvent{
								Time:  proto.Int64(0),
								Delay: proto.Int32(0),
							},
						},
					},
				},
			},
		},
	}

	rows := Normalize("attempt-1", message)
	if len(rows.StopTimeUpdates) != 1 {
		t.Fatalf("stop time updates = %d, want 1", len(rows.StopTimeUpdates))
	}

	stop := rows.StopTimeUpdates[0]
	if stop.ArrivalTime != nil {
		t.Fatalf("zero arrival time should be null, got %v", stop.ArrivalTime)
	}
	// A genuine zero-second delay is indistinguishable from no data and is
	// stored as null.
	if stop.DelaySeconds != nil {
		t.Fatalf("zero delay should be null, got %v", *stop.DelaySeconds)
	}
}

func TestNormalizeVehiclePosition(t *testing.T) {
	t.Parallel()

	message := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfs.VehiclePosition{
					Trip: &gtfs.TripDescriptor{
						TripId:  proto.String("T1"),
						RouteId: proto.String("R1"),
					},
					Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("V1")},
					Position: &gtfs.Position{
						Latitude:  proto.Float32(40.7),
						Longitude: proto.Float32(-73.9),
						Bearing:   proto.Float32(180),
					},
					StopId:        proto.String("S5"),
					CurrentStatus: gtfs.VehiclePosition_STOPPED_AT.Enum(),
					Timestamp:     proto.Uint64(1_704_100_000),
				},
			},
		},
	}

	rows := Normalize("attempt-9", message)
	if len(rows.VehiclePositions) != 1 {
		t.Fatalf("vehicle positions = %d, want 1", len(rows.VehiclePositions))
	}

	vehicle := rows.VehiclePositions[0]
	if vehicle.VehicleID != "V1" || vehicle.TripID != "T1" || vehicle.RouteID != "R1" {
		t.Fatalf("vehicle row = %+v", vehicle)
	}
	if vehicle.CurrentStopID != "S5" {
		t.Fatalf("current stop = %q, want S5", vehicle.CurrentStopID)
	}
	if vehicle.CurrentStatus != "STOPPED_AT" {
		t.Fatalf("status = %q, want STOPPED_AT", vehicle.CurrentStatus)
	}
	if vehicle.Latitude == nil || *vehicle.Latitude != 40.7 {
		t.Fatalf("latitude = %v, want 40.7", vehicle.Latitude)
	}
	if vehicle.Longitude == nil || *vehicle.Longitude != -73.9 {
		t.Fatalf("longitude = %v, want -73.9", vehicle.Longitude)
	}
	if vehicle.PositionTimestamp == nil {
		t.Fatal("position timestamp should be populated")
	}
}

func TestNormalizeVehicleWithoutPosition(t *testing.T) {
	t.Parallel()

	message := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfs.VehiclePosition{
					Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("V2")},
				},
			},
		},
	}

	rows := Normalize("attempt-1", message)
	vehicle := rows.VehiclePositions[0]

	if vehicle.Latitude != nil || vehicle.Longitude != nil || vehicle.Bearing != nil || vehicle.Speed != nil {
		t.Fatalf("position fields should be null without a position sub-message, got %+v", vehicle)
	}
	if vehicle.PositionTimestamp != nil {
		t.Fatalf("zero timestamp should be null, got %v", vehicle.PositionTimestamp)
	}
}

func TestNormalizeAlertFirstTranslationOnly(t *testing.T) {
	t.Parallel()

	message := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("1"),
				Alert: &gtfs.Alert{
					Cause:  gtfs.Alert_MAINTENANCE.Enum(),
					Effect: gtfs.Alert_DETOUR.Enum(),
					HeaderText: &gtfs.TranslatedString{
						Translation: []*gtfs.TranslatedString_Translation{
							{Text: proto.String("Service change"), Language: proto.String("en")},
							{Text: proto.String("Cambio de servicio"), Language: proto.String("es")},
						},
					},
					DescriptionText: &gtfs.TranslatedString{},
				},
			},
		},
	}

	rows := Normalize("attempt-1", message)
	if len(rows.ServiceAlerts) != 1 {
		t.Fatalf("service alerts = %d, want 1", len(rows.ServiceAlerts))
	}

	alert := rows.ServiceAlerts[0]
	if alert.HeaderText != "Service change" {
		t.Fatalf("header = %q, want first translation", alert.HeaderText)
	}
	if alert.DescriptionText != "" {
		t.Fatalf("description = %q, want empty string", alert.DescriptionText)
	}
	if alert.Cause != "MAINTENANCE" || alert.Effect != "DETOUR" {
		t.Fatalf("cause/effect = %s/%s", alert.Cause, alert.Effect)
	}
}

func TestNormalizeMultiKindEntity(t *testing.T) {
	t.Parallel()

	entity := tripUpdateEntity()
	entity.Vehicle = &gtfs.VehiclePosition{
		Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("V1")},
	}
	entity.Alert = &gtfs.Alert{}

	message := &gtfs.FeedMessage{Entity: []*gtfs.FeedEntity{entity}}
	rows := Normalize("attempt-1", message)

	if len(rows.TripUpdates) != 1 || len(rows.VehiclePositions) != 1 || len(rows.ServiceAlerts) != 1 {
		t.Fatalf("multi-kind entity should feed all three kinds, got %d/%d/%d",
			len(rows.TripUpdates), len(rows.VehiclePositions), len(rows.ServiceAlerts))
	}
}

func TestNormalizeSkipsEmptyEntity(t *testing.T) {
	t.Parallel()

	message := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{{Id: proto.String("bare")}},
	}

	rows := Normalize("attempt-1", message)
	if len(rows.TripUpdates)+len(rows.StopTimeUpdates)+len(rows.VehiclePositions)+len(rows.ServiceAlerts) != 0 {
		t.Fatalf("entity with no payload should produce no rows, got %+v", rows)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	message := &gtfs.FeedMessage{Entity: []*gtfs.FeedEntity{tripUpdateEntity()}}

	first := Normalize("attempt-1", message)
	second := Normalize("attempt-1", message)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("normalizing the same message twice should yield identical rows")
	}
}
