package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/service"
)

// LedgerServiceInterface defines the account balance operations.
type LedgerServiceInterface interface {
	Credit(ctx context.Context, accountID string, amount int64, source string) (int64, error)
	Debit(ctx context.Context, accountID string, amount int64, source string) (int64, error)
	Account(ctx context.Context, accountID string) (*model.AccountResponse, error)
}

// AccountHandler handles HTTP requests for account balances.
type AccountHandler struct {
	service   LedgerServiceInterface
	validator *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc LedgerServiceInterface, v *validator.Validate) *AccountHandler {
	return &AccountHandler{service: svc, validator: v}
}

// accountParam reads and checks the :id path parameter. On failure it writes
// the 400 response and returns false. The value is copied out of the request
// buffer because services hand it to the event dispatcher.
func accountParam(c *fiber.Ctx, v *validator.Validate) (string, bool, error) {
	id := utils.CopyString(c.Params("id"))
	if err := v.Var(id, "required,notblank,max=255"); err != nil {
		return "", false, errorResponse(c, fiber.StatusBadRequest, "invalid request: account id is invalid")
	}
	return id, true, nil
}

// GetAccount handles GET /api/accounts/:id. Unknown accounts report a zero balance.
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, ok, err := accountParam(c, h.validator)
	if !ok {
		return err
	}

	acct, err := h.service.Account(c.UserContext(), id)
	if err != nil {
		return internalError(c, err, "failed to load account")
	}
	return c.JSON(acct)
}

// GrantCredits handles POST /api/admin/accounts/:id/credits.
func (h *AccountHandler) GrantCredits(c *fiber.Ctx) error {
	id, ok, err := accountParam(c, h.validator)
	if !ok {
		return err
	}
	var req model.GrantCreditsRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	balance, err := h.service.Credit(c.UserContext(), id, *req.Amount, "admin")
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return errorResponse(c, fiber.StatusBadRequest, "invalid request: amount must be at least 1")
		}
		return internalError(c, err, "failed to grant credits")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("account_id", id).
		Int64("amount", *req.Amount).
		Msg("credits granted")

	return c.JSON(model.BalanceResponse{AccountID: id, Credits: balance})
}

// DebitCredits handles POST /api/admin/accounts/:id/debits.
func (h *AccountHandler) DebitCredits(c *fiber.Ctx) error {
	id, ok, err := accountParam(c, h.validator)
	if !ok {
		return err
	}
	var req model.GrantCreditsRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	balance, err := h.service.Debit(c.UserContext(), id, *req.Amount, "admin")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientFunds):
			return errorResponse(c, fiber.StatusPaymentRequired, "insufficient credits")
		case errors.Is(err, service.ErrInvalidAmount):
			return errorResponse(c, fiber.StatusBadRequest, "invalid request: amount must be at least 1")
		}
		return internalError(c, err, "failed to debit credits")
	}

	return c.JSON(model.BalanceResponse{AccountID: id, Credits: balance})
}
