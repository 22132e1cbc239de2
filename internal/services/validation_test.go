package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid batch request", func(t *testing.T) {
		req := BatchLookupRequest{EventIDs: []string{"evt-1", "evt-2"}}

		err := vh.ValidateStruct(&req)
		assert.NoError(t, err)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		req := BatchLookupRequest{}

		err := vh.ValidateStruct(&req)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 1)
	})

	t.Run("blank id inside batch rejected", func(t *testing.T) {
		req := BatchLookupRequest{EventIDs: []string{"evt-1", ""}}

		err := vh.ValidateStruct(&req)
		assert.Error(t, err)
	})

	t.Run("oversized batch rejected", func(t *testing.T) {
		ids := make([]string, 101)
		for i := range ids {
			ids[i] = "evt"
		}
		err := vh.ValidateStruct(&BatchLookupRequest{EventIDs: ids})
		assert.Error(t, err)
	})

	t.Run("valid date range", func(t *testing.T) {
		q := DateRangeQuery{
			Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		}
		assert.NoError(t, vh.ValidateStruct(&q))
	})

	t.Run("equal bounds allowed", func(t *testing.T) {
		at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		q := DateRangeQuery{Start: at, End: at}
		assert.NoError(t, vh.ValidateStruct(&q))
	})

	t.Run("inverted date range rejected", func(t *testing.T) {
		q := DateRangeQuery{
			Start: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}
		assert.Error(t, vh.ValidateStruct(&q))
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "Something failed", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Something failed", resp.Error)
		assert.Empty(t, resp.Details)
	})

	t.Run("with validation details", func(t *testing.T) {
		vh := NewValidationHelper()
		err := vh.ValidateStruct(&BatchLookupRequest{})
		assert.Error(t, err)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Details, "EventIDs")
	})
}
