package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/auth"
	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
// Returns auth.DefaultUserID (0) when auth is disabled or no user is authenticated.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "VALIDATION"})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondDomainError maps store and repository errors onto HTTP statuses:
// validation failures are 400, constraint violations 409, anything else 500.
func respondDomainError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, database.ErrValidation):
		respondBadRequest(c, err.Error())
	case errors.Is(err, database.ErrConstraintViolation):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "CONSTRAINT"})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseDateParam extracts a yyyy-MM-dd date from URL parameters.
// Returns the parsed date or responds with a 400 error and returns false.
func parseDateParam(c *gin.Context, paramName string) (entities.Date, bool) {
	date, err := entities.ParseDate(c.Param(paramName))
	if err != nil {
		respondBadRequest(c, "invalid "+paramName+", expected yyyy-MM-dd")
		return entities.Date{}, false
	}
	return date, true
}

// parseQueryDate extracts an optional yyyy-MM-dd date from query parameters.
// present is false when the parameter is absent; on a malformed value it
// responds with a 400 error and returns ok=false.
func parseQueryDate(c *gin.Context, paramName string) (date entities.Date, present bool, ok bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return entities.Date{}, false, true
	}
	date, err := entities.ParseDate(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName+", expected yyyy-MM-dd")
		return entities.Date{}, true, false
	}
	return date, true, true
}

// parseQueryInt reads a positive integer query parameter, falling back to def
// when it is missing, malformed or outside 1..max.
func parseQueryInt(c *gin.Context, paramName string, def, max int) int {
	value, err := strconv.Atoi(c.Query(paramName))
	if err != nil || value < 1 || value > max {
		return def
	}
	return value
}
