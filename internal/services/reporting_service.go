package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"

	"github.com/eventra/backend/internal/models"
)

const statsCacheKey = "distribution:stats"

// ReportingService exposes read-only queries over the distribution
// ledger. It never writes a record; its only side effect is the stats
// cache. A nil Redis client disables caching entirely.
type ReportingService struct {
	ledger    *LedgerService
	redis     *redis.Client
	cacheTTL  time.Duration
	validator *ValidationHelper
}

func NewReportingService(ledger *LedgerService, redisClient *redis.Client, cacheTTL time.Duration) *ReportingService {
	return &ReportingService{
		ledger:    ledger,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		validator: NewValidationHelper(),
	}
}

// InvalidateStats drops the cached revenue stats. The engine calls this
// after every successful insert so stale aggregates live at most one TTL.
func (rs *ReportingService) InvalidateStats(ctx context.Context) {
	if rs.redis == nil {
		return
	}
	if err := rs.redis.Del(ctx, statsCacheKey).Err(); err != nil {
		log.Printf("[REPORTING] failed to invalidate stats cache: %v", err)
	}
}

// GetEventDistribution returns the distribution record for one event
// @Summary Get a distribution record
// @Tags reporting
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} models.DistributionRecord
// @Failure 404 {object} ErrorResponse
// @Router /admin/distributions/events/{eventId} [get]
func (rs *ReportingService) GetEventDistribution(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		SendErrorResponse(w, "eventId is required", http.StatusBadRequest, nil)
		return
	}

	rec, err := rs.ledger.FindByEvent(r.Context(), eventID)
	if errors.Is(err, ErrRecordNotFound) {
		SendErrorResponse(w, "No distribution record for this event", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[REPORTING] record lookup for event %s failed: %v", eventID, err)
		SendErrorResponse(w, "Failed to fetch distribution record", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// GetRevenueByEvent is an alias of GetEventDistribution kept for the
// revenue-centric route.
func (rs *ReportingService) GetRevenueByEvent(w http.ResponseWriter, r *http.Request) {
	rs.GetEventDistribution(w, r)
}

// GetAllCompletedDistributions lists distribution records
// @Summary List distribution records
// @Description Paginated list of all records, newest first. Every stored record is completed by definition.
// @Tags reporting
// @Produce json
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size, max 100"
// @Success 200 {object} map[string]interface{}
// @Router /admin/distributions [get]
func (rs *ReportingService) GetAllCompletedDistributions(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", defaultPageLimit)

	records, err := rs.ledger.FindAll(r.Context(), page, limit)
	if err != nil {
		log.Printf("[REPORTING] listing distributions failed: %v", err)
		SendErrorResponse(w, "Failed to list distributions", http.StatusInternalServerError, nil)
		return
	}

	page, limit = clampPage(page, limit)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  emptyIfNil(records),
		"page":  page,
		"limit": limit,
	})
}

// GetDistributedRevenue returns aggregate totals across all records
// @Summary Get distributed revenue totals
// @Tags reporting
// @Produce json
// @Success 200 {object} models.RevenueTotals
// @Router /admin/distributions/revenue [get]
func (rs *ReportingService) GetDistributedRevenue(w http.ResponseWriter, r *http.Request) {
	totals, err := rs.ledger.TotalDistributed(r.Context())
	if err != nil {
		log.Printf("[REPORTING] revenue totals failed: %v", err)
		SendErrorResponse(w, "Failed to aggregate distributed revenue", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(totals)
}

// GetRecentDistributedRevenue returns the most recent records
// @Summary Get recent distributions
// @Tags reporting
// @Produce json
// @Param limit query int false "Number of records, default 10, max 100"
// @Success 200 {array} models.DistributionRecord
// @Router /admin/distributions/recent [get]
func (rs *ReportingService) GetRecentDistributedRevenue(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	records, err := rs.ledger.FindRecent(r.Context(), limit)
	if err != nil {
		log.Printf("[REPORTING] recent distributions failed: %v", err)
		SendErrorResponse(w, "Failed to list recent distributions", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(emptyIfNil(records))
}

// BatchLookupRequest is the body for the batch record lookup.
type BatchLookupRequest struct {
	EventIDs []string `json:"eventIds" validate:"required,min=1,max=100,dive,required"`
}

// GetEventsByIds looks up records for a batch of event ids
// @Summary Batch distribution lookup
// @Description Returns records in the same order as the requested ids; ids without a record are omitted.
// @Tags reporting
// @Accept json
// @Produce json
// @Param request body BatchLookupRequest true "Event ids"
// @Success 200 {array} models.DistributionRecord
// @Failure 400 {object} ErrorResponse
// @Router /admin/distributions/batch [post]
func (rs *ReportingService) GetEventsByIds(w http.ResponseWriter, r *http.Request) {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req BatchLookupRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := rs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	records, err := rs.ledger.FindByEvents(r.Context(), req.EventIDs)
	if err != nil {
		log.Printf("[REPORTING] batch lookup failed: %v", err)
		SendErrorResponse(w, "Failed to look up distributions", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(emptyIfNil(records))
}

// GetRevenueStats returns counts and aggregate sums
// @Summary Get revenue statistics
// @Tags reporting
// @Produce json
// @Success 200 {object} models.RevenueStats
// @Router /admin/distributions/stats [get]
func (rs *ReportingService) GetRevenueStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached := rs.cachedStats(ctx); cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	stats, err := rs.ledger.Stats(ctx)
	if err != nil {
		log.Printf("[REPORTING] revenue stats failed: %v", err)
		SendErrorResponse(w, "Failed to aggregate revenue stats", http.StatusInternalServerError, nil)
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		SendErrorResponse(w, "Failed to aggregate revenue stats", http.StatusInternalServerError, nil)
		return
	}
	rs.cacheStats(ctx, payload)

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (rs *ReportingService) cachedStats(ctx context.Context) []byte {
	if rs.redis == nil {
		return nil
	}
	cached, err := rs.redis.Get(ctx, statsCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[REPORTING] stats cache read failed: %v", err)
		}
		return nil
	}
	return []byte(cached)
}

func (rs *ReportingService) cacheStats(ctx context.Context, payload []byte) {
	if rs.redis == nil || rs.cacheTTL <= 0 {
		return
	}
	if err := rs.redis.Set(ctx, statsCacheKey, string(payload), rs.cacheTTL).Err(); err != nil {
		log.Printf("[REPORTING] stats cache write failed: %v", err)
	}
}

// DateRangeQuery is the validated query for the date-range report. Both
// bounds are inclusive.
type DateRangeQuery struct {
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtefield=Start"`
}

// GetRevenueByDateRange returns records distributed within a range
// @Summary Get distributions by date range
// @Description Records with distributedAt in [start, end], inclusive on both bounds.
// @Tags reporting
// @Produce json
// @Param start query string true "Range start, RFC 3339"
// @Param end query string true "Range end, RFC 3339"
// @Success 200 {array} models.DistributionRecord
// @Failure 400 {object} ErrorResponse
// @Router /admin/distributions/range [get]
func (rs *ReportingService) GetRevenueByDateRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r.URL.Query().Get("start"))
	if err != nil {
		SendErrorResponse(w, "start must be an RFC 3339 timestamp or YYYY-MM-DD date", http.StatusBadRequest, nil)
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("end"))
	if err != nil {
		SendErrorResponse(w, "end must be an RFC 3339 timestamp or YYYY-MM-DD date", http.StatusBadRequest, nil)
		return
	}

	query := DateRangeQuery{Start: start, End: end}
	if err := rs.validator.ValidateStruct(&query); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	records, err := rs.ledger.FindByDateRange(r.Context(), query.Start, query.End)
	if err != nil {
		log.Printf("[REPORTING] date range query failed: %v", err)
		SendErrorResponse(w, "Failed to list distributions by date range", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(emptyIfNil(records))
}

func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

func emptyIfNil(records []models.DistributionRecord) []models.DistributionRecord {
	if records == nil {
		return []models.DistributionRecord{}
	}
	return records
}
