package events

import (
	"time"

	"github.com/spec-kit/civic-track/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueReported      EventType = "issue_reported"
	EventIssueStatusChanged EventType = "issue_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueReportedPayload payload.
type IssueReportedPayload struct {
	Title     string               `json:"title"`
	Category  domain.IssueCategory `json:"category"`
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}
