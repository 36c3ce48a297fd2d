package delivery

import (
	"net/http"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for delivery assignments.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new delivery handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// GetAssignment handles GET /assignments/:assignmentId.
func (h *Handler) GetAssignment(c echo.Context) error {
	if _, _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	a, err := h.svc.GetAssignment(c.Request().Context(), c.Param("assignmentId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, a)
}

// ListMyAssignments handles GET /assignments for the provider.
func (h *Handler) ListMyAssignments(c echo.Context) error {
	providerID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	assignments, total, err := h.svc.ListProviderAssignments(c.Request().Context(), providerID, page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"assignments": assignments, "total": total})
}

// TransitionStatus handles PUT /assignments/:assignmentId/status.
func (h *Handler) TransitionStatus(c echo.Context) error {
	providerID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Transition(c.Request().Context(), providerID, c.Param("assignmentId"), models.AssignmentStatus(req.Status))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, a)
}

// ConfirmDelivery handles POST /assignments/:assignmentId/confirm.
func (h *Handler) ConfirmDelivery(c echo.Context) error {
	providerID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.ConfirmDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	rec, err := h.svc.Confirm(c.Request().Context(), providerID, c.Param("assignmentId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, rec)
}

// GetConfirmation handles GET /assignments/:assignmentId/confirmation.
func (h *Handler) GetConfirmation(c echo.Context) error {
	if _, _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	rec, err := h.svc.GetConfirmation(c.Request().Context(), c.Param("assignmentId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, rec)
}
