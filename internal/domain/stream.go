package domain

import "time"

// Stream names (must match the admin dashboard publisher)
const (
	StreamStationUpdates = "stream:stations:updates"
)

// Station update kinds carried on the stream.
const (
	StationCreated = "created"
	StationUpdated = "updated"
	StationDeleted = "deleted"
)

// StationUpdateEvent is published whenever the admin dashboard
// creates, edits or removes a station.
type StationUpdateEvent struct {
	Type       string    `json:"type"`
	StationID  string    `json:"station_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StreamMessage is a raw message read from a Redis stream.
type StreamMessage struct {
	ID   string
	Data string
}
