package http

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts every route on e. Mutating agreement routes are the
// ones main wraps with the idempotency middleware.
func RegisterRoutes(e *echo.Echo, h *Handler, ah *AgreementHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	e.POST("/offers", ah.CreateOffer, mw...)
	e.POST("/requests", ah.CreateRequest, mw...)
	e.GET("/marketplace/requests", ah.ListRequests)

	e.GET("/agreements/:agreement_id", ah.Get)
	e.GET("/agreements/:agreement_id/summary", ah.Summary)
	e.POST("/agreements/:agreement_id/claim", ah.Claim, mw...)
	e.POST("/agreements/:agreement_id/accept", ah.Accept, mw...)
	e.POST("/agreements/:agreement_id/reject", ah.Reject, mw...)
	e.POST("/agreements/:agreement_id/withdraw", ah.Withdraw, mw...)
	e.POST("/agreements/:agreement_id/fund", ah.Fund, mw...)
	e.POST("/agreements/:agreement_id/payments", ah.RecordPayment, mw...)

	e.POST("/transactions/:transaction_id/confirm", ah.ConfirmPayment, mw...)
}
