package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the structured error body the web surface returns.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates an APIError.
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// ErrOperationBusy is the response for an operation trigger while another
// operation holds the slot.
var ErrOperationBusy = NewAPIError(http.StatusConflict, "OPERATION_BUSY", "Another operation is already running")

// InvalidRequestWithError attaches the decode failure detail.
func InvalidRequestWithError(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  "INVALID_REQUEST",
		Message:    "Invalid request format",
		Details:    err.Error(),
	}
}

// ValidationFailed attaches validator detail.
func ValidationFailed(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  "VALIDATION_FAILED",
		Message:    "Request validation failed",
		Details:    err.Error(),
	}
}
