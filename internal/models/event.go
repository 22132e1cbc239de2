package models

import "time"

const (
	EventStatusActive    = "active"
	EventStatusFinished  = "finished"
	EventStatusCancelled = "cancelled"
)

// Event mirrors the slice of the externally owned events table this
// service reads. The event lifecycle itself is managed elsewhere.
type Event struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Status      string    `json:"status" db:"status"`
	OrganizerID string    `json:"organizerId" db:"organizer_id"`
	EndTime     time.Time `json:"endTime" db:"end_time"`
}

// IsFinished reports whether the event has concluded and is eligible for
// revenue settlement.
func (e *Event) IsFinished() bool {
	return e.Status == EventStatusFinished
}
