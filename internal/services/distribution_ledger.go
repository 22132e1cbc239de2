package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/eventra/backend/internal/models"
	"github.com/eventra/backend/internal/money"
)

const uniqueViolation = pq.ErrorCode("23505")

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

const recordColumns = `id, event_id, admin_percentage, total_revenue,
	total_participants, admin_amount, organizer_amount, distributed_at,
	is_distributed`

// DistributionLedger is the write contract the engine needs. The full
// LedgerService also carries the read queries used by reporting.
type DistributionLedger interface {
	InsertIfAbsent(ctx context.Context, rec *models.DistributionRecord) (created bool, stored *models.DistributionRecord, err error)
	FindByEvent(ctx context.Context, eventID string) (*models.DistributionRecord, error)
}

// LedgerService is the storage layer for distribution records. Records are
// append-only: no method ever updates or deletes a row.
type LedgerService struct {
	db *sql.DB
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db}
}

// InsertIfAbsent writes the record unless one already exists for the same
// event. The unique index on event_id enforces this across all processes;
// losing the race is not an error. Returns created=false and the winner's
// record when another writer got there first.
func (s *LedgerService) InsertIfAbsent(ctx context.Context, rec *models.DistributionRecord) (bool, *models.DistributionRecord, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO distribution_records
			(event_id, admin_percentage, total_revenue, total_participants,
			 admin_amount, organizer_amount, distributed_at, is_distributed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		rec.EventID, rec.AdminPercentage, rec.TotalRevenue, rec.TotalParticipants,
		rec.AdminAmount, rec.OrganizerAmount, rec.DistributedAt, rec.IsDistributed).
		Scan(&rec.ID)
	if err == nil {
		return true, rec, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		existing, ferr := s.FindByEvent(ctx, rec.EventID)
		if ferr != nil {
			return false, nil, ferr
		}
		return false, existing, nil
	}

	return false, nil, fmt.Errorf("%w: inserting record for event %s: %v", ErrStore, rec.EventID, err)
}

func (s *LedgerService) FindByEvent(ctx context.Context, eventID string) (*models.DistributionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM distribution_records
		WHERE event_id = $1`,
		eventID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding record for event %s: %v", ErrStore, eventID, err)
	}

	return rec, nil
}

// FindAll returns records newest first. Page starts at 1; limit is clamped
// to [1,100] with a default of 20.
func (s *LedgerService) FindAll(ctx context.Context, page, limit int) ([]models.DistributionRecord, error) {
	page, limit = clampPage(page, limit)
	offset := (page - 1) * limit

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM distribution_records
		ORDER BY distributed_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: listing records: %v", ErrStore, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindRecent returns the most recent records by distribution time.
func (s *LedgerService) FindRecent(ctx context.Context, limit int) ([]models.DistributionRecord, error) {
	if limit < 1 || limit > maxPageLimit {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM distribution_records
		ORDER BY distributed_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing recent records: %v", ErrStore, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByEvents looks up records for a batch of event ids. The result
// preserves the input order; ids with no record are omitted.
func (s *LedgerService) FindByEvents(ctx context.Context, eventIDs []string) ([]models.DistributionRecord, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM distribution_records
		WHERE event_id = ANY($1)`,
		pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: batch record lookup: %v", ErrStore, err)
	}
	defer rows.Close()

	found, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	byEvent := make(map[string]models.DistributionRecord, len(found))
	for _, rec := range found {
		byEvent[rec.EventID] = rec
	}

	ordered := make([]models.DistributionRecord, 0, len(found))
	for _, id := range eventIDs {
		if rec, ok := byEvent[id]; ok {
			ordered = append(ordered, rec)
		}
	}

	return ordered, nil
}

// FindByDateRange returns records with distributed_at in [start, end],
// inclusive on both bounds, oldest first.
func (s *LedgerService) FindByDateRange(ctx context.Context, start, end time.Time) ([]models.DistributionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM distribution_records
		WHERE distributed_at BETWEEN $1 AND $2
		ORDER BY distributed_at`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: listing records by date range: %v", ErrStore, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// TotalDistributed aggregates amounts across every record in the ledger.
func (s *LedgerService) TotalDistributed(ctx context.Context) (*models.RevenueTotals, error) {
	var totals models.RevenueTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(admin_amount), 0),
		       COALESCE(SUM(organizer_amount), 0),
		       COALESCE(SUM(total_revenue), 0)
		FROM distribution_records`).
		Scan(&totals.AdminAmount, &totals.OrganizerAmount, &totals.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating distributed revenue: %v", ErrStore, err)
	}

	return &totals, nil
}

// Stats returns counts, aggregate sums and the average revenue per
// distributed event.
func (s *LedgerService) Stats(ctx context.Context) (*models.RevenueStats, error) {
	var stats models.RevenueStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_revenue), 0),
		       COALESCE(SUM(admin_amount), 0),
		       COALESCE(SUM(organizer_amount), 0)
		FROM distribution_records`).
		Scan(&stats.DistributedEvents, &stats.TotalRevenue, &stats.AdminAmount, &stats.OrganizerAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating revenue stats: %v", ErrStore, err)
	}

	stats.AverageRevenue = decimal.Zero
	if stats.DistributedEvents > 0 {
		stats.AverageRevenue = money.RoundHalfUp(
			stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.DistributedEvents))))
	}

	return &stats, nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func scanRecord(row *sql.Row) (*models.DistributionRecord, error) {
	var rec models.DistributionRecord
	err := row.Scan(&rec.ID, &rec.EventID, &rec.AdminPercentage, &rec.TotalRevenue,
		&rec.TotalParticipants, &rec.AdminAmount, &rec.OrganizerAmount,
		&rec.DistributedAt, &rec.IsDistributed)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]models.DistributionRecord, error) {
	var records []models.DistributionRecord
	for rows.Next() {
		var rec models.DistributionRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.AdminPercentage, &rec.TotalRevenue,
			&rec.TotalParticipants, &rec.AdminAmount, &rec.OrganizerAmount,
			&rec.DistributedAt, &rec.IsDistributed); err != nil {
			return nil, fmt.Errorf("%w: scanning record: %v", ErrStore, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading records: %v", ErrStore, err)
	}

	return records, nil
}
