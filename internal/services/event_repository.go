package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eventra/backend/internal/models"
)

// EventStore is the read contract over the externally owned events table.
type EventStore interface {
	FindFinishedUndistributedEvents(ctx context.Context) ([]models.Event, error)
	FindEventByID(ctx context.Context, eventID string) (*models.Event, error)
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindFinishedUndistributedEvents lists finished events that have no
// distribution record yet. The listing can be stale by the time each event
// is processed; the ledger's unique index is what guarantees exactly-once.
func (r *EventRepository) FindFinishedUndistributedEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.status, e.organizer_id, e.end_time
		FROM events e
		LEFT JOIN distribution_records d ON d.event_id = e.id
		WHERE e.status = $1 AND d.id IS NULL
		ORDER BY e.end_time`,
		models.EventStatusFinished)
	if err != nil {
		return nil, fmt.Errorf("%w: listing finished events: %v", ErrStore, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Status, &ev.OrganizerID, &ev.EndTime); err != nil {
			return nil, fmt.Errorf("%w: scanning event: %v", ErrStore, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing finished events: %v", ErrStore, err)
	}

	return events, nil
}

func (r *EventRepository) FindEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	var ev models.Event
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, status, organizer_id, end_time
		FROM events
		WHERE id = $1`,
		eventID).Scan(&ev.ID, &ev.Title, &ev.Status, &ev.OrganizerID, &ev.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding event %s: %v", ErrStore, eventID, err)
	}

	return &ev, nil
}
