package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Catalog errors
	ErrCodeUnknownFormat            = "unknown_format"
	ErrCodeUnknownEngine            = "unknown_engine"
	ErrCodeUnknownSkin              = "unknown_skin"
	ErrCodeIncompatibleFormatEngine = "incompatible_format_engine"
	ErrCodeIncompatibleEngineSkin   = "incompatible_engine_skin"

	// Content errors
	ErrCodeTransformationFailed  = "transformation_failed"
	ErrCodeBankFetchFailed       = "bank_fetch_failed"
	ErrCodeInsufficientQuestions = "insufficient_questions"

	// Session errors
	ErrCodeSessionCreationFailed = "session_creation_failed"
	ErrCodeSessionNotFound       = "session_not_found"
	ErrCodeInvalidJoinCode       = "invalid_join_code"
	ErrCodeSessionNotJoinable    = "session_not_joinable"
	ErrCodeSessionNotActive      = "session_not_active"
	ErrCodeNotAParticipant       = "not_a_participant"
	ErrCodeDuplicateSubmission   = "duplicate_submission"
	ErrCodeCodeSpaceExhausted    = "code_space_exhausted"
	ErrCodeStartFailed           = "start_failed"
	ErrCodeSubmitFailed          = "submit_failed"
	ErrCodeFinishFailed          = "finish_failed"

	// Host token errors
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeInvalidHostToken = "invalid_host_token"
	ErrCodeTokenExpired     = "token_expired"

	// Ranking errors
	ErrCodeRankingFetchFailed = "ranking_fetch_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
