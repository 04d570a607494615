package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrPermissionDenied   ErrCode = "PERMISSION_DENIED"
	ErrEmployeeAccessOnly ErrCode = "EMPLOYEE_ACCESS_ONLY"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotAvailable ErrCode = "EXAM_NOT_AVAILABLE"
	ErrExamNotPublished ErrCode = "EXAM_NOT_PUBLISHED"
	ErrExamNotDraft     ErrCode = "EXAM_NOT_DRAFT"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrAttemptCompleted ErrCode = "ATTEMPT_ALREADY_COMPLETED"
	ErrNoActiveAttempt  ErrCode = "NO_ACTIVE_ATTEMPT"
	ErrNotExamAuthor    ErrCode = "NOT_EXAM_AUTHOR"
	ErrExamNotAssigned  ErrCode = "EXAM_NOT_ASSIGNED"

	// ─── Leave ─────────────────────────────────────────────────────────
	ErrLeaveNotPending ErrCode = "LEAVE_NOT_PENDING"
	ErrLeaveOverlap    ErrCode = "LEAVE_OVERLAP"

	// ─── Assistant ─────────────────────────────────────────────────────
	ErrAssistantUnavailable ErrCode = "ASSISTANT_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrEmployeeAccessOnly:
		return "This resource is restricted to employees."
	case ErrAdminAccessOnly:
		return "This resource is restricted to HR administrators."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."

	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	case ErrExamNotAvailable:
		return "This exam is currently not available."
	case ErrExamNotPublished:
		return "This exam has not been published."
	case ErrExamNotDraft:
		return "This exam is no longer in DRAFT status."
	case ErrNoQuestions:
		return "This exam has no questions."
	case ErrAttemptCompleted:
		return "This exam has already been submitted."
	case ErrNoActiveAttempt:
		return "You have no active attempt for this exam."
	case ErrNotExamAuthor:
		return "You are not the author of this exam."
	case ErrExamNotAssigned:
		return "This exam is not assigned to you."

	case ErrLeaveNotPending:
		return "This leave request has already been reviewed."
	case ErrLeaveOverlap:
		return "You already have a leave request overlapping this period."

	case ErrAssistantUnavailable:
		return "The assistant is temporarily unavailable. Please try again."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
