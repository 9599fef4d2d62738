package gtfsrt

import (
	"errors"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func marshalFeed(t *testing.T, message *gtfs.FeedMessage) []byte {
	t.Helper()

	payload, err := proto.Marshal(message)
	if err != nil {
		t.Fatalf("proto.Marshal() error = %v", err)
	}
	return payload
}

func feedWithHeader(timestamp uint64) *gtfs.FeedMessage {
	return &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(timestamp),
		},
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	payload := marshalFeed(t, feedWithHeader(1_704_100_000))

	message, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := message.GetHeader().GetTimestamp(); got != 1_704_100_000 {
		t.Fatalf("header timestamp = %d, want 1704100000", got)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte{0xff, 0xff, 0xff, 0x01})
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	t.Parallel()

	_, err := Decode(nil)
	if err == nil {
		t.Fatal("expected decode error for empty payload, got nil")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
}

func TestHeaderTimestamp(t *testing.T) {
	t.Parallel()

	got := HeaderTimestamp(feedWithHeader(1_704_100_000))
	if got == nil {
		t.Fatal("expected non-nil timestamp")
	}
	want := time.Unix(1_704_100_000, 0).UTC()
	if !got.Equal(want) {
		t.Fatalf("timestamp = %s, want %s", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("timestamp location = %s, want UTC", got.Location())
	}
}

func TestHeaderTimestampZeroIsAbsent(t *testing.T) {
	t.Parallel()

	if got := HeaderTimestamp(feedWithHeader(0)); got != nil {
		t.Fatalf("zero header timestamp = %v, want nil", got)
	}
	if got := HeaderTimestamp(nil); got != nil {
		t.Fatalf("nil message timestamp = %v, want nil", got)
	}
}
