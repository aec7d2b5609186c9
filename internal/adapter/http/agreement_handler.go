package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	domain "lendpeer/internal/domain/agreement"
	usecase "lendpeer/internal/usecase/agreement"
)

const actorHeader = "Ax-Actor-Id"

type AgreementHandler struct{ uc *usecase.Usecase }

func NewAgreementHandler(uc *usecase.Usecase) *AgreementHandler { return &AgreementHandler{uc: uc} }

type termsReq struct {
	Amount         decimal.Decimal   `json:"amount"            validate:"dec2"`
	InterestRate   decimal.Decimal   `json:"interest_rate"`
	DurationMonths int               `json:"duration_months"  validate:"required,gte=1"`
	Purpose        string            `json:"purpose"`
	Conditions     domain.Conditions `json:"conditions"`
	PaymentMethod  string            `json:"payment_method"   validate:"required,oneof=upi bank wallet crypto cash"`
	SmartContract  bool              `json:"smart_contract"`
}

func (r termsReq) toTerms() usecase.Terms {
	return usecase.Terms{
		Amount:         r.Amount,
		InterestRate:   r.InterestRate,
		DurationMonths: r.DurationMonths,
		Purpose:        r.Purpose,
		Conditions:     r.Conditions,
		PaymentMethod:  domain.PaymentMethod(r.PaymentMethod),
		SmartContract:  r.SmartContract,
	}
}

type createOfferReq struct {
	LenderName    string `json:"lender_name"     validate:"required"`
	LenderEmail   string `json:"lender_email"    validate:"required,email"`
	BorrowerName  string `json:"borrower_name"   validate:"required"`
	BorrowerEmail string `json:"borrower_email"  validate:"required,email"`
	termsReq
}

func (h *AgreementHandler) CreateOffer(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return nil
	}
	var req createOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.CreateOffer(c.Request().Context(), usecase.CreateOfferInput{
		LenderID:      actor,
		LenderName:    req.LenderName,
		LenderEmail:   req.LenderEmail,
		BorrowerName:  req.BorrowerName,
		BorrowerEmail: req.BorrowerEmail,
		Terms:         req.toTerms(),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type createRequestReq struct {
	BorrowerName  string `json:"borrower_name"   validate:"required"`
	BorrowerEmail string `json:"borrower_email"  validate:"required,email"`
	termsReq
}

func (h *AgreementHandler) CreateRequest(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return nil
	}
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.CreateRequest(c.Request().Context(), usecase.CreateRequestInput{
		BorrowerID:    actor,
		BorrowerName:  req.BorrowerName,
		BorrowerEmail: req.BorrowerEmail,
		Terms:         req.toTerms(),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AgreementHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("agreement_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) Summary(c echo.Context) error {
	dto, err := h.uc.RepaymentSummary(c.Request().Context(), c.Param("agreement_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) ListRequests(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}
	list, err := h.uc.ListOpenRequests(c.Request().Context(), limit)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// The four single-action transitions share one shape: path id + actor header.
func (h *AgreementHandler) Claim(c echo.Context) error    { return h.act(c, h.uc.Claim) }
func (h *AgreementHandler) Accept(c echo.Context) error   { return h.act(c, h.uc.Accept) }
func (h *AgreementHandler) Reject(c echo.Context) error   { return h.act(c, h.uc.Reject) }
func (h *AgreementHandler) Withdraw(c echo.Context) error { return h.act(c, h.uc.Withdraw) }
func (h *AgreementHandler) Fund(c echo.Context) error     { return h.act(c, h.uc.Fund) }

func (h *AgreementHandler) act(c echo.Context, op func(ctx context.Context, agreementID, actorID string) (*usecase.AgreementDTO, error)) error {
	actor, ok := actorID(c)
	if !ok {
		return nil
	}
	dto, err := op(c.Request().Context(), c.Param("agreement_id"), actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type recordPaymentReq struct {
	Amount        decimal.Decimal `json:"amount"          validate:"dec2"`
	PaymentMethod string          `json:"payment_method"  validate:"required,oneof=upi bank wallet crypto cash"`
	Reference     string          `json:"reference"`
}

func (h *AgreementHandler) RecordPayment(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return nil
	}
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.RecordPayment(c.Request().Context(), usecase.RecordPaymentInput{
		AgreementID:   c.Param("agreement_id"),
		BorrowerID:    actor,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type confirmPaymentReq struct {
	Outcome string `json:"outcome"  validate:"required,oneof=completed failed"`
}

// ConfirmPayment is the payment collaborator's callback.
func (h *AgreementHandler) ConfirmPayment(c echo.Context) error {
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.ConfirmPayment(c.Request().Context(), c.Param("transaction_id"), req.Outcome == "completed")
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// actorID pulls the caller's identity header; identity itself is the auth
// collaborator's concern, this only checks the shape. A false return means
// the rejection response was already written.
func actorID(c echo.Context) (string, bool) {
	actor := strings.TrimSpace(c.Request().Header.Get(actorHeader))
	if actor == "" {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader})
		return "", false
	}
	if !reHex32.MatchString(actor) {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + actorHeader})
		return "", false
	}
	return actor, true
}
