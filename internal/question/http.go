package question

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/classquest/edugame-platform/pkg/http/errors"
)

// HTTPHandlers exposes the bank-prefetch endpoint. The authoring flow calls
// it when an evaluation is scheduled, so the bank is cached before the class
// starts.
type HTTPHandlers struct {
	queue  chan<- BankRequest
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for question bank endpoints.
func NewHTTPHandlers(queue chan<- BankRequest, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		queue:  queue,
		logger: logger.With().Str("component", "question_http").Logger(),
	}
}

// Prefetch handles POST /v1/question-banks/prefetch
func (h *HTTPHandlers) Prefetch(w http.ResponseWriter, r *http.Request) {
	var req BankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if len(req.OACodes) == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "oa_codes is required", "oa_codes")
		return
	}
	if req.Count <= 0 {
		req.Count = 10
	}

	select {
	case h.queue <- req:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"queued":true}`))
	default:
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Prefetch queue is full")
	}
}
