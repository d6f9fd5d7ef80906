package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to the gateway)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// IsRetryable reports whether the gateway should redeliver the event.
// Only 5xx responses signal redelivery.
func (e *AppError) IsRetryable() bool {
	return e.HTTPStatus >= http.StatusInternalServerError
}

// ---- Webhook Security (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "Invalid webhook signature", http.StatusUnauthorized)
}

func ErrSignatureExpired() *AppError {
	return New("SEC_002", "Webhook timestamp outside allowed window", http.StatusForbidden)
}

func ErrMissingSignature() *AppError {
	return New("SEC_003", "Missing webhook signature header", http.StatusUnauthorized)
}

// ---- Event Decoding (EVT) ----

func ErrMalformedEvent(err error) *AppError {
	return Wrap("EVT_001", "Malformed event payload", http.StatusBadRequest, err)
}

// ErrIncompleteEvent marks a recognized event whose required metadata is
// missing. Redelivery cannot fix the payload, so the handler acknowledges the
// event with 200 and logs at error severity for manual investigation.
func ErrIncompleteEvent(field string) *AppError {
	return New("EVT_002", fmt.Sprintf("Event metadata missing required field %q", field), http.StatusOK)
}

// ---- Fulfillment (FUL) ----

// ErrCatalogItemNotFound is retryable: the item may not have propagated to the
// catalog yet. Persistent recurrence across gateway retries is surfaced via
// error-level logs for operator attention.
func ErrCatalogItemNotFound(itemID string) *AppError {
	return New("FUL_001", fmt.Sprintf("Catalog item %s not found", itemID), http.StatusBadGateway)
}

func ErrCollaboratorUnavailable(name string, err error) *AppError {
	return Wrap("FUL_002", fmt.Sprintf("%s collaborator unavailable", name), http.StatusServiceUnavailable, err)
}

func ErrOrderNotFound(reference string) *AppError {
	return New("FUL_003", fmt.Sprintf("No order for payment reference %s", reference), http.StatusNotFound)
}

func ErrVoucherNotIssued(reference string) *AppError {
	return New("FUL_004", fmt.Sprintf("No voucher issued yet for payment reference %s", reference), http.StatusConflict)
}

// ---- Ops API (OPS) ----

func ErrInvalidOpsToken() *AppError {
	return New("OPS_001", "Invalid or expired ops token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("EVT_001", message, http.StatusBadRequest)
}
