package gtfsrt

import (
	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/transitops/transit-collector/internal/domain"
)

// RowSet is the normalized output of one decoded feed for one fetch attempt.
type RowSet struct {
	TripUpdates      []domain.TripUpdate
	StopTimeUpdates  []domain.StopTimeUpdate
	VehiclePositions []domain.VehiclePosition
	ServiceAlerts    []domain.ServiceAlert
}

// Normalize walks every entity of a decoded feed and produces relational rows
// tagged with the attempt id. Each entity is tested independently for each
// payload kind; an entity carrying several payloads contributes to several row
// slices, and an entity carrying none is skipped. Normalization is total: it
// never fails, mapping missing optional fields to nulls or empty strings.
func Normalize(attemptID string, message *gtfs.FeedMessage) RowSet {
	var rows RowSet
	if message == nil {
		return rows
	}

	for _, entity := range message.GetEntity() {
		if entity == nil {
			continue
		}

		if tripUpdate := entity.GetTripUpdate(); tripUpdate != nil {
			trip, stops := normalizeTripUpdate(attemptID, tripUpdate)
			rows.TripUpdates = append(rows.TripUpdates, trip)
			rows.StopTimeUpdates = append(rows.StopTimeUpdates, stops...)
		}
		if vehicle := entity.GetVehicle(); vehicle != nil {
			rows.VehiclePositions = append(rows.VehiclePositions, normalizeVehicle(attemptID, vehicle))
		}
		if alert := entity.GetAlert(); alert != nil {
			rows.ServiceAlerts = append(rows.ServiceAlerts, normalizeAlert(attemptID, alert))
		}
	}

	return rows
}

func normalizeTripUpdate(attemptID string, update *gtfs.TripUpdate) (domain.TripUpdate, []domain.StopTimeUpdate) {
	trip := update.GetTrip()

	row := domain.TripUpdate{
		AttemptID:            attemptID,
		TripID:               trip.GetTripId(),
		RouteID:              trip.GetRouteId(),
		StartDate:            trip.GetStartDate(),
		ScheduleRelationship: trip.GetScheduleRelationship().String(),
	}

	stops := make([]domain.StopTimeUpdate, 0, len(update.GetStopTimeUpdate()))
	for _, stu := range update.GetStopTimeUpdate() {
		if stu == nil {
			continue
		}

		stopRow := domain.StopTimeUpdate{
			AttemptID:    attemptID,
			TripID:       trip.GetTripId(),
			StopID:       stu.GetStopId(),
			StopSequence: stu.GetStopSequence(),
		}

		// Times and delays are recorded only when the sub-message is present
		// and the value is non-zero; a zero-second delay stores as null.
		if arrival := stu.GetArrival(); arrival != nil {
			stopRow.ArrivalTime = epochTime(arrival.GetTime())
			if delay := arrival.GetDelay(); delay != 0 {
				stopRow.DelaySeconds = &delay
			}
		}
		if departure := stu.GetDeparture(); departure != nil {
			stopRow.DepartureTime = epochTime(departure.GetTime())
		}

		stops = append(stops, stopRow)
	}

	return row, stops
}

func normalizeVehicle(attemptID string, vehicle *gtfs.VehiclePosition) domain.VehiclePosition {
	trip := vehicle.GetTrip()

	row := domain.VehiclePosition{
		AttemptID:         attemptID,
		VehicleID:         vehicle.GetVehicle().GetId(),
		TripID:            trip.GetTripId(),
		RouteID:           trip.GetRouteId(),
		CurrentStopID:     vehicle.GetStopId(),
		CurrentStatus:     vehicle.GetCurrentStatus().String(),
		PositionTimestamp: epochTime(int64(vehicle.GetTimestamp())),
	}

	if position := vehicle.GetPosition(); position != nil {
		lat := position.GetLatitude()
		lon := position.GetLongitude()
		bearing := position.GetBearing()
		speed := position.GetSpeed()
		row.Latitude = &lat
		row.Longitude = &lon
		row.Bearing = &bearing
		row.Speed = &speed
	}

	return row
}

func normalizeAlert(attemptID string, alert *gtfs.Alert) domain.ServiceAlert {
	return domain.ServiceAlert{
		AttemptID:       attemptID,
		HeaderText:      translationText(alert.GetHeaderText()),
		DescriptionText: translationText(alert.GetDescriptionText()),
		Cause:           alert.GetCause().String(),
		Effect:          alert.GetEffect().String(),
	}
}

// translationText keeps the first translation only; an absent or empty
// container yields "" rather than null.
func translationText(translated *gtfs.TranslatedString) string {
	translations := translated.GetTranslation()
	if len(translations) == 0 {
		return ""
	}
	return translations[0].GetText()
}
