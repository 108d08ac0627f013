// Package sse implements Server-Sent Events for real-time ingestion updates.
package sse

import (
	"time"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventIngestStarted represents the start of an ingestion batch.
	EventIngestStarted EventType = "ingest.started"
	// EventIngestProgress represents per-item progress within a batch.
	EventIngestProgress EventType = "ingest.progress"
	// EventIngestCompleted represents completion of an ingestion batch.
	EventIngestCompleted EventType = "ingest.completed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Username filters delivery to a specific user's clients.
	// Empty string means "broadcast to all" (heartbeats).
	Username string `json:"-"`
}

// IngestStartedEventData is the data payload for ingest.started events.
type IngestStartedEventData struct {
	StartedAt time.Time `json:"started_at"`
	BatchID   string    `json:"batch_id"`
	Total     int       `json:"total"`
}

// IngestProgressEventData is the data payload for ingest.progress events.
type IngestProgressEventData struct {
	BatchID      string `json:"batch_id"`
	CurrentTitle string `json:"current_title"`
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
}

// IngestCompletedEventData is the data payload for ingest.completed events.
type IngestCompletedEventData struct {
	CompletedAt time.Time `json:"completed_at"`
	BatchID     string    `json:"batch_id"`
	Total       int       `json:"total"`
	Failed      int       `json:"failed"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewIngestStartedEvent creates an ingest.started event for a user.
func NewIngestStartedEvent(username, batchID string, total int) Event {
	return Event{
		Type: EventIngestStarted,
		Data: IngestStartedEventData{
			BatchID:   batchID,
			Total:     total,
			StartedAt: time.Now(),
		},
		Timestamp: time.Now(),
		Username:  username,
	}
}

// NewIngestProgressEvent creates an ingest.progress event for a user.
func NewIngestProgressEvent(username, batchID, currentTitle string, completed, total int) Event {
	return Event{
		Type: EventIngestProgress,
		Data: IngestProgressEventData{
			BatchID:      batchID,
			CurrentTitle: currentTitle,
			Completed:    completed,
			Total:        total,
		},
		Timestamp: time.Now(),
		Username:  username,
	}
}

// NewIngestCompletedEvent creates an ingest.completed event for a user.
func NewIngestCompletedEvent(username, batchID string, total, failed int) Event {
	return Event{
		Type: EventIngestCompleted,
		Data: IngestCompletedEventData{
			BatchID:     batchID,
			Total:       total,
			Failed:      failed,
			CompletedAt: time.Now(),
		},
		Timestamp: time.Now(),
		Username:  username,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
