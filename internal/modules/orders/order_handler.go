package orders

import (
	"net/http"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// AcceptQuote handles POST /quote-requests/:requestId/quotes/:quoteId/accept.
func (h *Handler) AcceptQuote(c echo.Context) error {
	userID, email, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.AcceptQuoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.Finalize(c.Request().Context(), userID, email, c.Param("requestId"), c.Param("quoteId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, result)
}

// GetOrderDetails handles GET /orders/:orderId.
func (h *Handler) GetOrderDetails(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	order, err := h.svc.GetOrder(c.Request().Context(), userID, c.Param("orderId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, order)
}

// ListMyOrders handles GET /orders.
func (h *Handler) ListMyOrders(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	orders, total, err := h.svc.ListOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"orders": orders, "total": total})
}
