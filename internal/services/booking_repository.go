package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eventra/backend/internal/models"
)

// RevenueAggregator is the read contract over the externally owned
// bookings and tickets tables.
type RevenueAggregator interface {
	AggregateRevenueForEvent(ctx context.Context, eventID string) (*models.RevenueAggregate, error)
}

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// AggregateRevenueForEvent sums ticket prices and counts participants for
// one event. Only bookings with a completed payment count, and cancelled
// tickets are excluded. An event with no qualifying bookings aggregates to
// zero revenue and zero participants.
func (r *BookingRepository) AggregateRevenueForEvent(ctx context.Context, eventID string) (*models.RevenueAggregate, error) {
	var agg models.RevenueAggregate
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.price), 0), COUNT(t.id)
		FROM bookings b
		JOIN tickets t ON t.booking_id = b.id
		WHERE b.event_id = $1
		  AND b.payment_status = $2
		  AND t.status <> $3`,
		eventID, models.PaymentStatusCompleted, models.TicketStatusCancelled).
		Scan(&agg.TotalRevenue, &agg.TotalParticipants)
	if err != nil {
		// An aggregate query always returns one row, so even
		// sql.ErrNoRows is a store fault here.
		return nil, fmt.Errorf("%w: aggregating revenue for event %s: %v", ErrStore, eventID, err)
	}

	return &agg, nil
}
