package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionRecord is the immutable ledger entry for one event's revenue
// split. The event_id column carries a unique index, so at most one record
// can ever exist per event; rows are never updated or deleted.
type DistributionRecord struct {
	ID                int             `json:"id" db:"id"`
	EventID           string          `json:"eventId" db:"event_id"`
	AdminPercentage   decimal.Decimal `json:"adminPercentage" db:"admin_percentage"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue" db:"total_revenue"`
	TotalParticipants int             `json:"totalParticipants" db:"total_participants"`
	AdminAmount       decimal.Decimal `json:"adminAmount" db:"admin_amount"`
	OrganizerAmount   decimal.Decimal `json:"organizerAmount" db:"organizer_amount"`
	DistributedAt     time.Time       `json:"distributedAt" db:"distributed_at"`
	IsDistributed     bool            `json:"isDistributed" db:"is_distributed"`
}

// RevenueTotals aggregates amounts across all distribution records.
type RevenueTotals struct {
	AdminAmount     decimal.Decimal `json:"adminAmount"`
	OrganizerAmount decimal.Decimal `json:"organizerAmount"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

// RevenueStats extends the totals with counts and per-event averages.
type RevenueStats struct {
	DistributedEvents int             `json:"distributedEvents"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AdminAmount       decimal.Decimal `json:"adminAmount"`
	OrganizerAmount   decimal.Decimal `json:"organizerAmount"`
	AverageRevenue    decimal.Decimal `json:"averageRevenue"`
}

// SweepError records a single event that failed during a sweep.
type SweepError struct {
	EventID string `json:"eventId"`
	Reason  string `json:"reason"`
}

// SweepSummary is the outcome of one pass over all eligible finished
// events. Skipped counts events another writer distributed first.
type SweepSummary struct {
	ProcessedCount int          `json:"processedCount"`
	SkippedCount   int          `json:"skippedCount"`
	FailedCount    int          `json:"failedCount"`
	Errors         []SweepError `json:"errors,omitempty"`
}
