package gtfsrt

import (
	"strings"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DecodeError classifies a malformed wire payload. Like FetchError it is
// recovered into a failed attempt row and never propagates past the feed.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 3)
	parts = append(parts, "decode error")

	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Decode parses raw bytes into a GTFS-realtime FeedMessage.
func Decode(payload []byte) (*gtfs.FeedMessage, error) {
	if len(payload) == 0 {
		return nil, &DecodeError{Message: "empty payload"}
	}

	message := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(payload, message); err != nil {
		return nil, &DecodeError{Message: "malformed feed message", Cause: err}
	}

	return message, nil
}

// HeaderTimestamp extracts the feed header timestamp as UTC wall time. A zero
// or absent timestamp means "no value", not the epoch.
func HeaderTimestamp(message *gtfs.FeedMessage) *time.Time {
	if message == nil {
		return nil
	}
	return epochTime(int64(message.GetHeader().GetTimestamp()))
}

func epochTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
