package quotes

import (
	"net/http"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for quote requests and quotes.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new quote handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// OpenQuoteRequest handles POST /carts/:sessionId/quote-requests.
func (h *Handler) OpenQuoteRequest(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.OpenQuoteRequestRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	request, err := h.svc.OpenRequest(c.Request().Context(), userID, c.Param("sessionId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, request)
}

// GetQuoteRequest handles GET /quote-requests/:requestId.
func (h *Handler) GetQuoteRequest(c echo.Context) error {
	if _, _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	request, err := h.svc.GetRequest(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, request)
}

// AbandonQuoteRequest handles DELETE /quote-requests/:requestId.
func (h *Handler) AbandonQuoteRequest(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.AbandonRequest(c.Request().Context(), userID, c.Param("requestId")); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SubmitQuote handles POST /quote-requests/:requestId/quotes. The
// provider identity comes from the token, never from the body.
func (h *Handler) SubmitQuote(c echo.Context) error {
	providerID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.SubmitQuoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	quote, err := h.svc.Submit(c.Request().Context(), providerID, c.Param("requestId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, quote)
}

// ListSelectableQuotes handles GET /quote-requests/:requestId/quotes.
func (h *Handler) ListSelectableQuotes(c echo.Context) error {
	if _, _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	quotes, err := h.svc.ListSelectable(c.Request().Context(), c.Param("requestId"), c.QueryParam("sort"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"quotes": quotes, "total": len(quotes)})
}
