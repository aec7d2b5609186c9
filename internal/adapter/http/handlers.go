package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domain "lendpeer/internal/domain/agreement"
	"lendpeer/internal/domain/transaction"
	"lendpeer/pkg/amortize"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// writeDomainError maps the lifecycle's typed errors onto HTTP statuses.
// AlreadyClaimed is an expected outcome under contention, not a failure:
// the client should refresh its listing and move on.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, transaction.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "someone else already took this agreement"})
	case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, transaction.ErrNotPending):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "this action is no longer available for this agreement"})
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnknownPaymentMethod),
		errors.Is(err, amortize.ErrNonPositivePrincipal),
		errors.Is(err, amortize.ErrNegativeRate),
		errors.Is(err, amortize.ErrNonPositiveTerm):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
