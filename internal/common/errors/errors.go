// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"match-engine/internal/matching"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnauthorized            ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden               ErrorCode = "FORBIDDEN"
	ErrCodeNotFound                ErrorCode = "NOT_FOUND"
	ErrCodeAlreadySwiped           ErrorCode = "ALREADY_SWIPED"
	ErrCodeApplicationConflict     ErrorCode = "APPLICATION_CONFLICT"
	ErrCodeInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeQuotaExceeded           ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeDependencyFailure       ErrorCode = "DEPENDENCY_FAILURE"

	ErrCodeParseError    ErrorCode = "PARSE_ERROR"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 2. Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false)
}

func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false)
}

func NewDependencyFailureError(err error) *StandardError {
	return newError(ErrCodeDependencyFailure, "A backing store is unavailable", err.Error(), true)
}

func NewQuotaExceededError(q *matching.QuotaExceededError) *StandardError {
	e := newError(ErrCodeQuotaExceeded, "Daily right-swipe quota reached", q.Error(), false)
	e.Metadata = map[string]interface{}{
		"tier":  string(q.Tier),
		"limit": q.Limit,
		"used":  q.Used,
	}
	return e
}

// domainCodes pairs each matching sentinel with its code and message.
var domainCodes = []struct {
	sentinel error
	code     ErrorCode
	message  string
}{
	{matching.ErrValidation, ErrCodeValidationFailed, "Request validation failed"},
	{matching.ErrUnauthorized, ErrCodeUnauthorized, "Actor is not known"},
	{matching.ErrForbidden, ErrCodeForbidden, "Actor may not perform this operation"},
	{matching.ErrNotFound, ErrCodeNotFound, "Referenced entity does not exist"},
	{matching.ErrAlreadySwiped, ErrCodeAlreadySwiped, "Swipe already recorded for this target"},
	{matching.ErrApplicationConflict, ErrCodeApplicationConflict, "Application changed concurrently"},
	{matching.ErrInvalidTransition, ErrCodeInvalidStatusTransition, "Application status change is not allowed"},
	{matching.ErrDependency, ErrCodeDependencyFailure, "A backing store is unavailable"},
}

// FromDomain converts any error returned by the matching engine into a
// StandardError. Unknown errors become INTERNAL_ERROR.
func FromDomain(err error) *StandardError {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std
	}

	var quota *matching.QuotaExceededError
	if stderrors.As(err, &quota) {
		return NewQuotaExceededError(quota)
	}

	for _, dc := range domainCodes {
		if stderrors.Is(err, dc.sentinel) {
			return newError(dc.code, dc.message, err.Error(), IsRetryableErrorCode(dc.code))
		}
	}
	return newError(ErrCodeInternalError, "Unexpected error", err.Error(), false)
}

// ==========================
// 3. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. They are
// identical today; the map is the single place to diverge.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:        "VALIDATION_FAILED",
	ErrCodeUnauthorized:            "UNAUTHORIZED",
	ErrCodeForbidden:               "FORBIDDEN",
	ErrCodeNotFound:                "NOT_FOUND",
	ErrCodeAlreadySwiped:           "ALREADY_SWIPED",
	ErrCodeApplicationConflict:     "APPLICATION_CONFLICT",
	ErrCodeInvalidStatusTransition: "INVALID_STATUS_TRANSITION",
	ErrCodeQuotaExceeded:           "QUOTA_EXCEEDED",
	ErrCodeDependencyFailure:       "DEPENDENCY_FAILURE",
	ErrCodeParseError:              "PARSE_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDependencyFailure:
		return 3

	case ErrCodeApplicationConflict:
		return 1 // a re-read usually resolves it

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTHORIZED") || strings.Contains(codeStr, "FORBIDDEN"):
		return "ACCESS"
	case strings.Contains(codeStr, "QUOTA"):
		return "QUOTA"
	case strings.Contains(codeStr, "SWIPE") || strings.Contains(codeStr, "APPLICATION") || strings.Contains(codeStr, "TRANSITION"):
		return "STATE"
	case strings.Contains(codeStr, "DEPENDENCY"):
		return "DEPENDENCY"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "NOT_FOUND"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
