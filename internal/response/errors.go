package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidAction  ErrCode = "INVALID_ACTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrModuleNotFound ErrCode = "MODULE_NOT_FOUND"

	// ─── Session-specific ──────────────────────────────────────────────
	ErrNoActiveSession    ErrCode = "NO_ACTIVE_SESSION"
	ErrNoSelectedModule   ErrCode = "NO_SELECTED_MODULE"
	ErrSessionNotFinished ErrCode = "SESSION_NOT_FINISHED"
	ErrSessionInProgress  ErrCode = "SESSION_IN_PROGRESS"
	ErrNoCheckpoint       ErrCode = "NO_CHECKPOINT"

	// ─── Archive ───────────────────────────────────────────────────────
	ErrArchiveDisabled ErrCode = "ARCHIVE_DISABLED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidAction:
		return "Unknown action."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrModuleNotFound:
		return "Module not found."

	// ─── Session-specific ──────────────────────────────────────────────
	case ErrNoActiveSession:
		return "No assessment is in progress."
	case ErrNoSelectedModule:
		return "No module is selected."
	case ErrSessionNotFinished:
		return "The assessment has not been submitted yet."
	case ErrSessionInProgress:
		return "An assessment is already loaded. Exit to the catalog first."
	case ErrNoCheckpoint:
		return "There is no saved attempt to resume."

	// ─── Archive ───────────────────────────────────────────────────────
	case ErrArchiveDisabled:
		return "The attempt archive is not configured."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
