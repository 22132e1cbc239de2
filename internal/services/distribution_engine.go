package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventra/backend/internal/config"
	"github.com/eventra/backend/internal/models"
	"github.com/eventra/backend/internal/money"
)

// StatsInvalidator drops cached revenue aggregates after a write. A nil
// invalidator is allowed.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context)
}

// DistributionService turns finished, undistributed events into immutable
// distribution records, exactly once per event. All dependencies are
// injected; the service itself is stateless and safe for concurrent use
// across goroutines and across process instances.
type DistributionService struct {
	events   EventStore
	bookings RevenueAggregator
	ledger   DistributionLedger
	cfg      *config.DistributionConfig
	stats    StatsInvalidator
}

func NewDistributionService(events EventStore, bookings RevenueAggregator,
	ledger DistributionLedger, cfg *config.DistributionConfig,
	stats StatsInvalidator) *DistributionService {
	return &DistributionService{
		events:   events,
		bookings: bookings,
		ledger:   ledger,
		cfg:      cfg,
		stats:    stats,
	}
}

// computeDistribution builds the unsaved record for one finished event.
// The organizer amount is the exact remainder after the rounded platform
// cut, so adminAmount + organizerAmount always equals totalRevenue.
func (ds *DistributionService) computeDistribution(ctx context.Context, event *models.Event) (*models.DistributionRecord, error) {
	agg, err := ds.bookings.AggregateRevenueForEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if agg.TotalRevenue.IsNegative() || agg.TotalParticipants < 0 {
		return nil, fmt.Errorf("%w: negative aggregate for event %s (revenue=%s participants=%d)",
			ErrComputation, event.ID, agg.TotalRevenue, agg.TotalParticipants)
	}

	adminAmount, organizerAmount, err := money.Split(agg.TotalRevenue, ds.cfg.AdminPercentage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComputation, err)
	}

	return &models.DistributionRecord{
		EventID:           event.ID,
		AdminPercentage:   ds.cfg.AdminPercentage,
		TotalRevenue:      agg.TotalRevenue,
		TotalParticipants: agg.TotalParticipants,
		AdminAmount:       adminAmount,
		OrganizerAmount:   organizerAmount,
		DistributedAt:     time.Now().UTC(),
		IsDistributed:     true,
	}, nil
}

// distribute computes and writes the record for a finished event. A
// zero-revenue event still gets an all-zero record, which also stops
// future sweeps from re-examining it. created is false when a concurrent
// writer inserted first; the winner's record is returned in that case.
func (ds *DistributionService) distribute(ctx context.Context, event *models.Event) (*models.DistributionRecord, bool, error) {
	rec, err := ds.computeDistribution(ctx, event)
	if err != nil {
		return nil, false, err
	}

	created, stored, err := ds.ledger.InsertIfAbsent(ctx, rec)
	if err != nil {
		return nil, false, err
	}

	if created {
		log.Printf("[DISTRIBUTION] event %s distributed: revenue=%s admin=%s organizer=%s participants=%d",
			event.ID, stored.TotalRevenue, stored.AdminAmount, stored.OrganizerAmount, stored.TotalParticipants)
		if ds.stats != nil {
			ds.stats.InvalidateStats(ctx)
		}
	} else {
		log.Printf("[DISTRIBUTION] event %s was distributed by a concurrent writer", event.ID)
	}

	return stored, created, nil
}

// DistributeEvent is the manual, single-event entry point.
//
// Returns ErrEventNotFound or ErrEventNotFinished when the event is not
// eligible, and ErrAlreadyDistributed together with the existing record
// when one is already present. Losing the insert race against a concurrent
// sweep is treated as success: the winner's record is returned with a nil
// error.
func (ds *DistributionService) DistributeEvent(ctx context.Context, eventID string) (*models.DistributionRecord, error) {
	event, err := ds.events.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsFinished() {
		return nil, fmt.Errorf("%w: event %s is %s", ErrEventNotFinished, eventID, event.Status)
	}

	existing, err := ds.ledger.FindByEvent(ctx, eventID)
	if err == nil {
		return existing, ErrAlreadyDistributed
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	stored, _, err := ds.distribute(ctx, event)
	return stored, err
}

// ProcessFinishedEvents runs one sweep over all eligible finished events.
// Each event is attempted independently: a failure is recorded in the
// summary and never aborts the rest of the batch, and an event another
// writer distributed between listing and writing counts as skipped. Only a
// failure of the candidate listing itself errors the sweep as a whole.
func (ds *DistributionService) ProcessFinishedEvents(ctx context.Context) (*models.SweepSummary, error) {
	events, err := ds.events.FindFinishedUndistributedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing finished events: %w", err)
	}

	summary := &models.SweepSummary{}
	for i := range events {
		event := &events[i]

		_, err := ds.ledger.FindByEvent(ctx, event.ID)
		if err == nil {
			summary.SkippedCount++
			continue
		}
		if !errors.Is(err, ErrRecordNotFound) {
			summary.FailedCount++
			summary.Errors = append(summary.Errors, models.SweepError{EventID: event.ID, Reason: err.Error()})
			continue
		}

		_, created, err := ds.distribute(ctx, event)
		switch {
		case err != nil:
			summary.FailedCount++
			summary.Errors = append(summary.Errors, models.SweepError{EventID: event.ID, Reason: err.Error()})
		case created:
			summary.ProcessedCount++
		default:
			// Lost the insert race after listing.
			summary.SkippedCount++
		}
	}

	return summary, nil
}

// TriggerDistribution runs one sweep on demand
// @Summary Trigger revenue distribution
// @Description Process all finished events that have no distribution record yet
// @Tags distributions
// @Produce json
// @Success 200 {object} models.SweepSummary
// @Failure 500 {object} ErrorResponse
// @Router /admin/distributions/trigger [post]
func (ds *DistributionService) TriggerDistribution(w http.ResponseWriter, r *http.Request) {
	summary, err := ds.ProcessFinishedEvents(r.Context())
	if err != nil {
		log.Printf("[DISTRIBUTION] manual sweep failed: %v", err)
		SendErrorResponse(w, "Failed to process finished events", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// DistributeSpecificEvent distributes one event's revenue on demand
// @Summary Distribute revenue for one event
// @Description Compute and persist the revenue split for a single finished event
// @Tags distributions
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 201 {object} models.DistributionRecord
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/distributions/events/{eventId} [post]
func (ds *DistributionService) DistributeSpecificEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		SendErrorResponse(w, "eventId is required", http.StatusBadRequest, nil)
		return
	}

	rec, err := ds.DistributeEvent(r.Context(), eventID)
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, ErrEventNotFound):
		SendErrorResponse(w, "Event not found", http.StatusNotFound, nil)
	case errors.Is(err, ErrEventNotFinished):
		SendErrorResponse(w, "Event has not finished yet", http.StatusConflict, nil)
	case errors.Is(err, ErrAlreadyDistributed):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "Revenue already distributed for this event",
			"record": rec,
		})
	case err != nil:
		log.Printf("[DISTRIBUTION] manual distribution of event %s failed: %v", eventID, err)
		SendErrorResponse(w, "Failed to distribute event revenue", http.StatusInternalServerError, nil)
	default:
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	}
}
