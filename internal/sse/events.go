// Package sse streams import job progress to connected clients as
// Server-Sent Events. The job runner publishes lifecycle transitions;
// clients subscribe per bar and receive job rows as they change.
package sse

import (
	"time"

	"github.com/barkeepapp/barkeep-server/internal/domain"
)

// EventType identifies the kind of event on the stream.
type EventType string

const (
	EventHeartbeat    EventType = "heartbeat"
	EventJobQueued    EventType = "job.queued"
	EventJobStarted   EventType = "job.started"
	EventJobCompleted EventType = "job.completed"
	EventJobFailed    EventType = "job.failed"
)

// Event is one message on the stream. BarID scopes delivery: clients
// subscribed to another bar never see it. An empty BarID reaches everyone.
type Event struct {
	Type      EventType         `json:"type"`
	BarID     string            `json:"bar_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Job       *domain.ImportJob `json:"job,omitempty"`
}

// NewHeartbeatEvent creates a keep-alive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}

// NewJobEvent maps a job's current status to its stream event.
func NewJobEvent(job *domain.ImportJob) Event {
	var t EventType
	switch job.Status {
	case domain.JobPending:
		t = EventJobQueued
	case domain.JobRunning:
		t = EventJobStarted
	case domain.JobDone:
		t = EventJobCompleted
	default:
		t = EventJobFailed
	}
	return Event{
		Type:      t,
		BarID:     job.BarID,
		Timestamp: time.Now(),
		Job:       job,
	}
}
