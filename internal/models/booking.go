package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"

	TicketStatusValid     = "valid"
	TicketStatusCancelled = "cancelled"
)

// Booking mirrors the externally owned bookings table. Only bookings with
// a completed payment count toward an event's revenue.
type Booking struct {
	ID            string    `json:"id" db:"id"`
	EventID       string    `json:"eventId" db:"event_id"`
	UserID        string    `json:"userId" db:"user_id"`
	PaymentStatus string    `json:"paymentStatus" db:"payment_status"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Ticket mirrors the externally owned tickets table. Cancelled tickets are
// excluded from revenue and participant counts.
type Ticket struct {
	ID        string          `json:"id" db:"id"`
	BookingID string          `json:"bookingId" db:"booking_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Status    string          `json:"status" db:"status"`
}

// RevenueAggregate is the completed revenue attributable to one event at
// the time of aggregation.
type RevenueAggregate struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalParticipants int             `json:"totalParticipants"`
}
