package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// UserHeader carries the id of the acting user
const UserHeader = "X-User-ID"

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   Dependencies
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger Logger) *Handlers {
	return &Handlers{
		deps:   deps,
		logger: logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	healthy := true
	if h.deps.Health != nil {
		healthy, response.Components = h.deps.Health()
	}
	if !healthy {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Data: response, Error: "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// statusFor maps workflow error kinds to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainwf.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainwf.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domainwf.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainwf.ErrConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Internal errors are logged and
// hidden from the client.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		message = "internal server error"
	}
	c.JSON(status, Response{Success: false, Error: message})
}

// respondBindError reports a malformed payload as a validation failure
func (h *Handlers) respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: describeBindError(err)})
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body: " + err.Error()
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Field()))
		case "datetime":
			problems = append(problems, fmt.Sprintf("%s must be a date formatted %s", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return "invalid request body: " + strings.Join(problems, "; ")
}

// actingUser returns the X-User-ID header, answering 400 when it is absent
func (h *Handlers) actingUser(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(UserHeader))
	if userID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: UserHeader + " header is required"})
		return "", false
	}
	return userID, true
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}
