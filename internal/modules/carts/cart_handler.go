package carts

import (
	"net/http"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for cart sessions.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new cart handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateCart(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateCartRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	cart, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, cart)
}

func (h *Handler) GetCart(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	cart, err := h.svc.Get(c.Request().Context(), userID, c.Param("sessionId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, cart)
}

func (h *Handler) UpdateCart(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	cart, err := h.svc.Update(c.Request().Context(), userID, c.Param("sessionId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, cart)
}

func (h *Handler) AbandonCart(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.Abandon(c.Request().Context(), userID, c.Param("sessionId")); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
