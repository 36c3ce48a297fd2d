package utils

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace-delivery/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithJSON writes a JSON payload with the given status.
func RespondWithJSON(c echo.Context, status int, payload interface{}) error {
	return c.JSON(status, payload)
}

// RespondWithError writes a uniform JSON error body.
func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
// Every kind carries an actionable message; none are retried here.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, models.ErrQuoteExpired):
		return RespondWithError(c, http.StatusGone, "this quote has expired, please request new quotes")
	case errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidState), errors.Is(err, models.ErrInvalidTransition):
		return RespondWithError(c, http.StatusConflict, err.Error())
	default:
		c.Logger().Errorf("unhandled service error: %v", err)
		return RespondWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

// ExtractUserInfo pulls the identity claims the auth middleware stored on
// the context.
func ExtractUserInfo(c echo.Context) (userID, email, role string, err error) {
	userID, _ = c.Get("userID").(string)
	email, _ = c.Get("userEmail").(string)
	role, _ = c.Get("userRole").(string)
	if userID == "" {
		return "", "", "", RespondWithError(c, http.StatusUnauthorized, "missing identity")
	}
	return userID, email, role, nil
}

// GetPageLimit reads pagination query params with sane bounds.
func GetPageLimit(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
