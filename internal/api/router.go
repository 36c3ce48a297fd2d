package api

import (
	"net/http"

	"marketplace-delivery/internal/api/middleware"
	"marketplace-delivery/internal/models"
	"marketplace-delivery/internal/modules/carts"
	"marketplace-delivery/internal/modules/delivery"
	"marketplace-delivery/internal/modules/orders"
	"marketplace-delivery/internal/modules/quotes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	cartHandler *carts.Handler,
	quoteHandler *quotes.Handler,
	orderHandler *orders.Handler,
	deliveryHandler *delivery.Handler,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)
	shopOwnerRequired := middleware.RoleRequired(models.RoleShopOwner)
	providerRequired := middleware.RoleRequired(models.RoleProvider)

	// --- Public Routes ---
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Cart Sessions (shop owner) ---
	cartGroup := e.Group("/carts", authMiddleware, shopOwnerRequired)
	{
		cartGroup.POST("", cartHandler.CreateCart)
		cartGroup.GET("/:sessionId", cartHandler.GetCart)
		cartGroup.PUT("/:sessionId", cartHandler.UpdateCart)
		cartGroup.DELETE("/:sessionId", cartHandler.AbandonCart)

		// Opening a solicitation freezes the cart.
		cartGroup.POST("/:sessionId/quote-requests", quoteHandler.OpenQuoteRequest)
	}

	// --- Quote Requests ---
	requestGroup := e.Group("/quote-requests", authMiddleware)
	{
		requestGroup.GET("/:requestId", quoteHandler.GetQuoteRequest)
		requestGroup.DELETE("/:requestId", quoteHandler.AbandonQuoteRequest, shopOwnerRequired)
		requestGroup.POST("/:requestId/quotes", quoteHandler.SubmitQuote, providerRequired)
		requestGroup.GET("/:requestId/quotes", quoteHandler.ListSelectableQuotes, shopOwnerRequired)
		requestGroup.POST("/:requestId/quotes/:quoteId/accept", orderHandler.AcceptQuote, shopOwnerRequired)
	}

	// --- Orders (shop owner) ---
	orderGroup := e.Group("/orders", authMiddleware, shopOwnerRequired)
	{
		orderGroup.GET("", orderHandler.ListMyOrders)
		orderGroup.GET("/:orderId", orderHandler.GetOrderDetails)
	}

	// --- Delivery Assignments ---
	assignmentGroup := e.Group("/assignments", authMiddleware)
	{
		assignmentGroup.GET("", deliveryHandler.ListMyAssignments, providerRequired)
		assignmentGroup.GET("/:assignmentId", deliveryHandler.GetAssignment)
		assignmentGroup.PUT("/:assignmentId/status", deliveryHandler.TransitionStatus, providerRequired)
		assignmentGroup.POST("/:assignmentId/confirm", deliveryHandler.ConfirmDelivery, providerRequired)
		assignmentGroup.GET("/:assignmentId/confirmation", deliveryHandler.GetConfirmation)
	}

	// --- Tracking ---
	e.GET("/ws/assignments/:assignmentId/track", deliveryHandler.HandleTrack, authMiddleware)
}
