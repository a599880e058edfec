package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/models"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInvalidState   = "INVALID_STATE"
	ErrCodeNoEntries      = "NO_ENTRIES"
	ErrCodeLimitExceeded  = "LIMIT_EXCEEDED"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error for malformed requests
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// InternalError is the 500 response; details never reach the client
func InternalError() *APIError {
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

var kindStatus = map[errors.Kind]struct {
	status int
	code   string
}{
	errors.ErrValidation:    {http.StatusBadRequest, ErrCodeValidation},
	errors.ErrNotFound:      {http.StatusNotFound, ErrCodeNotFound},
	errors.ErrInvalidState:  {http.StatusConflict, ErrCodeInvalidState},
	errors.ErrNoEntries:     {http.StatusConflict, ErrCodeNoEntries},
	errors.ErrLimitExceeded: {http.StatusTooManyRequests, ErrCodeLimitExceeded},
	errors.ErrForbidden:     {http.StatusForbidden, ErrCodeForbidden},
}

// ToAPIError converts service errors to API errors
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		if m, ok := kindStatus[appErr.Kind]; ok {
			return &APIError{Status: m.status, Code: m.code, Message: appErr.Message}
		}
	}
	return InternalError()
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondError writes an error response, logging anything that maps to a 500
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := ToAPIError(err)
	if apiErr.Status == http.StatusInternalServerError {
		h.log.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
	}
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// requireParam extracts a non-empty URL parameter
func requireParam(r *http.Request, name string) (string, error) {
	param := strings.TrimSpace(chi.URLParam(r, name))
	if param == "" {
		return "", BadRequest("Missing " + name + " parameter")
	}
	return param, nil
}

// publicScope reads the tenant and event from the URL
func publicScope(r *http.Request) (models.Scope, error) {
	tenantID, err := requireParam(r, "tenantID")
	if err != nil {
		return models.Scope{}, err
	}
	eventID, err := requireParam(r, "eventID")
	if err != nil {
		return models.Scope{}, err
	}
	return models.Scope{TenantID: tenantID, EventID: eventID}, nil
}
