// Package apperr defines the typed error taxonomy for the workflow core.
// Every failure carries a stable code and message and is surfaced to the
// caller as-is; handlers map the kind to an HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindValidation Kind = iota + 1 // malformed input
	KindNotFound                   // unknown id
	KindForbidden                  // actor lacks permission
	KindConflict                   // state already changed or would collide
	KindState                      // invalid ordering / cross-container computation
)

// Error is a typed failure with a stable machine-readable code
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// New builds a typed error. Package-level sentinels below cover the known
// failures; New is exported for call sites that need a one-off message.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// validation
	ErrEmptyApproverList = New(KindConflict, "EMPTY_APPROVER_LIST", "at least one approver is required")
	ErrInvalidInput      = New(KindValidation, "INVALID_INPUT", "invalid request payload")

	// not found
	ErrMemberNotFound      = New(KindNotFound, "MEMBER_NOT_FOUND", "member not found")
	ErrRequestNotFound     = New(KindNotFound, "REQUEST_NOT_FOUND", "approval request not found")
	ErrResponseNotFound    = New(KindNotFound, "RESPONSE_NOT_FOUND", "approval response not found")
	ErrDesignationNotFound = New(KindNotFound, "DESIGNATION_NOT_FOUND", "approver designation not found")
	ErrProjectNotFound     = New(KindNotFound, "PROJECT_NOT_FOUND", "project not found")
	ErrStageNotFound       = New(KindNotFound, "STAGE_NOT_FOUND", "pipeline stage not found")
	ErrTaskNotFound        = New(KindNotFound, "TASK_NOT_FOUND", "task not found")

	// forbidden
	ErrForbidden     = New(KindForbidden, "FORBIDDEN", "actor is not allowed to perform this operation")
	ErrNotAnApprover = New(KindForbidden, "NOT_AN_APPROVER", "member is not an active approver of this request")

	// conflict
	ErrAlreadyDeleted    = New(KindConflict, "ALREADY_DELETED", "record is already deleted")
	ErrAlreadyResponded  = New(KindConflict, "ALREADY_RESPONDED", "approver already has an active response")
	ErrRequestClosed     = New(KindConflict, "REQUEST_CLOSED", "request is already approved or rejected")
	ErrDuplicateApprover = New(KindConflict, "DUPLICATE_APPROVER", "member is already an active approver")
	ErrApproverSetEmpty  = New(KindConflict, "APPROVER_SET_EMPTY", "removal would leave an open request with no approvers")
	ErrVersionConflict   = New(KindConflict, "VERSION_CONFLICT", "request was modified concurrently, retries exhausted")

	// state
	ErrInvalidOrder   = New(KindState, "INVALID_ORDER", "previous key must be strictly less than next key")
	ErrCrossContainer = New(KindState, "CROSS_CONTAINER", "neighbor belongs to a different parent collection")
)

// HTTPStatus maps an error to the transport status code. Unrecognized errors
// are treated as internal.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the stable code of a typed error, or empty for others
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
