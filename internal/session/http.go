package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/evaluation"
	"github.com/classquest/edugame-platform/internal/question"
	httperrors "github.com/classquest/edugame-platform/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for session operations.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// CreateSessionRequest is the body of POST /v1/sessions. Either a stored
// evaluation id or an inline evaluation must be provided.
type CreateSessionRequest struct {
	EvaluationID string                 `json:"evaluation_id,omitempty"`
	Evaluation   *evaluation.Evaluation `json:"evaluation,omitempty"`
}

// CreateSessionResponse returns the lobby view plus the host control token.
type CreateSessionResponse struct {
	Session   View     `json:"session"`
	HostToken string   `json:"host_token"`
	Dropped   []string `json:"dropped_questions,omitempty"`
}

// CreateSession handles POST /v1/sessions
func (h *HTTPHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	var created Created
	var err error
	switch {
	case req.Evaluation != nil:
		if msg, field := validateEvaluation(req.Evaluation); msg != "" {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, msg, field)
			return
		}
		created, err = h.service.CreateFromEvaluation(r.Context(), *req.Evaluation)
	case req.EvaluationID != "":
		created, err = h.service.CreateFromStoredEvaluation(r.Context(), req.EvaluationID)
	default:
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "evaluation or evaluation_id is required", "evaluation")
		return
	}
	if err != nil {
		h.respondDomainError(w, err, "failed to create session")
		return
	}

	dropped := make([]string, 0, len(created.Dropped))
	for _, f := range created.Dropped {
		dropped = append(dropped, f.Error())
	}
	respondJSON(w, http.StatusCreated, CreateSessionResponse{
		Session:   created.View,
		HostToken: created.HostToken,
		Dropped:   dropped,
	})
}

// GetSession handles GET /v1/sessions/{id}
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, err, "failed to fetch session")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ResolveByCode handles GET /v1/sessions/code/{code}
func (h *HTTPHandlers) ResolveByCode(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ResolveByCode(r.PathValue("code"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeInvalidJoinCode, "No session with that join code")
			return
		}
		h.respondDomainError(w, err, "failed to resolve join code")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// JoinRequest is the body of POST /v1/sessions/{id}/join.
type JoinRequest struct {
	StudentID string `json:"student_id"`
}

// Join handles POST /v1/sessions/{id}/join
func (h *HTTPHandlers) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.StudentID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "student_id is required", "student_id")
		return
	}

	view, err := h.service.Join(r.Context(), r.PathValue("id"), req.StudentID)
	if err != nil {
		h.respondDomainError(w, err, "failed to join session")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Start handles POST /v1/sessions/{id}/start
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Host token required")
		return
	}

	view, err := h.service.Start(r.Context(), r.PathValue("id"), token)
	if err != nil {
		h.respondDomainError(w, err, "failed to start session")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SubmitRequest is the body of POST /v1/sessions/{id}/results.
type SubmitRequest struct {
	StudentID string         `json:"student_id"`
	Results   []AnswerResult `json:"results"`
}

// Submit handles POST /v1/sessions/{id}/results
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.StudentID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "student_id is required", "student_id")
		return
	}

	state, err := h.service.Submit(r.Context(), r.PathValue("id"), req.StudentID, req.Results)
	if err != nil {
		h.respondDomainError(w, err, "failed to submit results")
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Finish handles POST /v1/sessions/{id}/finish
func (h *HTTPHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Host token required")
		return
	}

	view, err := h.service.Finish(r.Context(), r.PathValue("id"), token)
	if err != nil {
		h.respondDomainError(w, err, "failed to finish session")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Ranking handles GET /v1/sessions/{id}/ranking
func (h *HTTPHandlers) Ranking(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.service.Ranking(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.respondDomainError(w, err, "failed to fetch ranking")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": NormalizeID(r.PathValue("id")),
		"entries":    entries,
	})
}

// ValidateTuple handles POST /v1/catalog/validate; teachers probe tuple
// compatibility while authoring, before any session exists.
func (h *HTTPHandlers) ValidateTuple(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FormatID catalog.FormatID `json:"format_id"`
		EngineID catalog.EngineID `json:"engine_id"`
		SkinID   catalog.SkinID   `json:"skin_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	if err := h.service.catalog.Validate(req.FormatID, req.EngineID, req.SkinID); err != nil {
		h.respondDomainError(w, err, "tuple validation failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"compatible": true})
}

func validateEvaluation(ev *evaluation.Evaluation) (msg, field string) {
	if ev.Title == "" {
		return "title is required", "title"
	}
	if ev.TeacherID == "" {
		return "teacher_id is required", "teacher_id"
	}
	if ev.FormatID == "" {
		return "format_id is required", "format_id"
	}
	if ev.EngineID == "" {
		return "engine_id is required", "engine_id"
	}
	if ev.SkinID == "" {
		return "skin_id is required", "skin_id"
	}
	if len(ev.Questions) == 0 && ev.QuestionCount <= 0 {
		return "questions or question_count is required", "questions"
	}
	return "", ""
}

// respondDomainError maps domain errors onto HTTP status codes and stable
// error codes.
func (h *HTTPHandlers) respondDomainError(w http.ResponseWriter, err error, logMsg string) {
	var unknownID *catalog.UnknownIDError
	var feMismatch *catalog.IncompatibleFormatEngineError
	var esMismatch *catalog.IncompatibleEngineSkinError

	switch {
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, err.Error())
	case errors.Is(err, ErrSessionNotJoinable):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionNotJoinable, err.Error())
	case errors.Is(err, ErrSessionNotActive):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionNotActive, err.Error())
	case errors.Is(err, ErrNotAParticipant):
		httperrors.RespondForbidden(w, httperrors.ErrCodeNotAParticipant, err.Error())
	case errors.Is(err, ErrDuplicateSubmission):
		httperrors.RespondConflict(w, httperrors.ErrCodeDuplicateSubmission, err.Error())
	case errors.Is(err, ErrNotHost):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, err.Error())
	case errors.Is(err, ErrInvalidHostToken):
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidHostToken, err.Error())
	case errors.Is(err, ErrCodeSpaceExhausted):
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeCodeSpaceExhausted, err.Error())
	case errors.Is(err, ErrNoPlayableContent):
		httperrors.RespondError(w, http.StatusUnprocessableEntity, httperrors.ErrCodeTransformationFailed, err.Error())
	case errors.Is(err, question.ErrInsufficientQuestions):
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeInsufficientQuestions, err.Error())
	case errors.As(err, &unknownID):
		httperrors.RespondBadRequest(w, unknownIDCode(unknownID.Kind), err.Error())
	case errors.As(err, &feMismatch):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeIncompatibleFormatEngine, err.Error())
	case errors.As(err, &esMismatch):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeIncompatibleEngineSkin, err.Error())
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		httperrors.RespondInternalError(w, logMsg)
	}
}

func unknownIDCode(kind string) string {
	switch kind {
	case "format":
		return httperrors.ErrCodeUnknownFormat
	case "engine":
		return httperrors.ErrCodeUnknownEngine
	case "skin":
		return httperrors.ErrCodeUnknownSkin
	}
	return httperrors.ErrCodeInvalidRequest
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
