package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/wardboard/internal/domainerr"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = domainerr.Unauthorized("unauthorized")
	ErrForbidden      = domainerr.Forbidden("forbidden")
	ErrInvalidRequest = domainerr.Validation("invalid_request")
	ErrInvalidID      = domainerr.Validation("invalid_id")
	ErrNotFound       = domainerr.NotFound("not_found")
	ErrThemeLocked    = domainerr.Forbidden("theme_switch_disabled")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	kind, code, ok := domainerr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	switch kind {
	case domainerr.KindValidation:
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{{
				Field:   validationErrorField(code),
				Code:    code,
				Message: validationErrorMessage(code),
			}},
		}
	case domainerr.KindNotFound:
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: code}
	case domainerr.KindConflict:
		return http.StatusConflict, errorPayload{Type: "conflict", Message: code}
	case domainerr.KindUnauthorized:
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: code}
	case domainerr.KindForbidden:
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: code}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger's error_type and error_code.
func classifyErrorForLog(err error) (string, string) {
	if kind, code, ok := domainerr.KindOf(err); ok {
		return string(kind), code
	}
	if errors.Is(err, http.ErrHandlerTimeout) {
		return "timeout", "handler_timeout"
	}
	return "internal_error", "internal_error"
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if field, ok := strings.CutPrefix(code, "invalid_"); ok {
		return field
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_credentials":
		return "invalid username or password"
	case "status_not_applicable":
		return "status does not apply to this target"
	case "status_inactive":
		return "status is inactive"
	case "cannot_deactivate_self":
		return "you cannot deactivate your own account"
	default:
		return "invalid value"
	}
}
