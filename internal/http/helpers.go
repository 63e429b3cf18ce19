package http

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const headerAcceptLanguage = "Accept-Language"

type errorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message,omitempty"`
	Issues  []goerrors.FieldError `json:"issues,omitempty"`
}

func writeError(c echo.Context, err error) error {
	status, payload := mapError(err)
	return c.JSON(status, payload)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	case domain.IsValidation(err):
		issues, _ := goerrors.GetValidationErrors(err)
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  issues,
		}
	case domain.IsNotFound(err):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	case domain.IsForbidden(err):
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()}
	case domain.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable, errorResponse{Error: "store_unavailable", Message: err.Error()}
	case domain.IsOrderInconsistency(err):
		return http.StatusConflict, errorResponse{Error: "order_inconsistent", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, validation.ErrRequired
	}
	return uuid.Parse(trimmed)
}

func requestLocale(c echo.Context) string {
	return c.QueryParam("locale")
}
