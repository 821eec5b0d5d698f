package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"support-chat/chat-api/internal/domain/chat"
)

// HandleError maps domain errors to HTTP status codes and writes the
// error response.
func HandleError(c *gin.Context, err error, message string) {
	var invalidTransition *chat.InvalidTransitionError
	var modeErr *chat.ModeError

	switch {
	case errors.Is(err, chat.ErrConversationNotFound),
		errors.Is(err, chat.ErrAgentNotFound),
		errors.Is(err, chat.ErrFaqNotFound):
		writeError(c, http.StatusNotFound, "not_found_error", message)
	case errors.Is(err, chat.ErrConversationAccessDenied),
		errors.Is(err, chat.ErrAgentAccessDenied):
		writeError(c, http.StatusForbidden, "forbidden_error", message)
	case errors.Is(err, chat.ErrConversationClosed),
		errors.Is(err, chat.ErrConversationAlreadyAssigned):
		writeError(c, http.StatusConflict, "conflict_error", message)
	case errors.As(err, &invalidTransition), errors.As(err, &modeErr):
		writeError(c, http.StatusConflict, "conflict_error", err.Error())
	case errors.Is(err, chat.ErrEmptyContent):
		writeError(c, http.StatusBadRequest, "validation_error", message)
	case errors.Is(err, chat.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "unauthorized_error", message)
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		writeError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// HandleNewError writes a route-level error such as a validation or
// authorization failure.
func HandleNewError(c *gin.Context, status int, message string) {
	writeError(c, status, statusToErrorType(status), message)
}

func writeError(c *gin.Context, status int, errorType, message string) {
	c.JSON(status, ErrorResponse{
		Error: &ErrorDetail{
			Message: message,
			Type:    errorType,
		},
	})
}

func statusToErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized_error"
	case http.StatusForbidden:
		return "forbidden_error"
	case http.StatusNotFound:
		return "not_found_error"
	case http.StatusConflict:
		return "conflict_error"
	case http.StatusTooManyRequests:
		return "rate_limited_error"
	default:
		return "internal_error"
	}
}
