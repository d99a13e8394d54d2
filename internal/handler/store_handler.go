package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/service"
)

// StoreServiceInterface defines the resource store operations.
type StoreServiceInterface interface {
	Costs() map[string]int64
	Purchase(ctx context.Context, accountID, resource string) (*model.Receipt, error)
}

// StoreHandler handles HTTP requests for the resource store.
type StoreHandler struct {
	service   StoreServiceInterface
	validator *validator.Validate
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(svc StoreServiceInterface, v *validator.Validate) *StoreHandler {
	return &StoreHandler{service: svc, validator: v}
}

// Costs handles GET /api/store/costs.
func (h *StoreHandler) Costs(c *fiber.Ctx) error {
	return c.JSON(h.service.Costs())
}

// Purchase handles POST /api/store/purchase.
func (h *StoreHandler) Purchase(c *fiber.Ctx) error {
	var req model.PurchaseRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	receipt, err := h.service.Purchase(c.UserContext(), req.AccountID, req.Resource)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientFunds):
			return errorResponse(c, fiber.StatusPaymentRequired, "insufficient credits")
		case errors.Is(err, service.ErrUnknownResource):
			return errorResponse(c, fiber.StatusBadRequest, "invalid request: resource must be one of "+resourceList())
		case errors.Is(err, service.ErrStoreDisabled):
			return errorResponse(c, fiber.StatusServiceUnavailable, "store is disabled")
		}
		return internalError(c, err, "failed to complete purchase")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("account_id", receipt.AccountID).
		Str("resource", receipt.Resource).
		Int64("cost", receipt.UnitCost).
		Msg("purchase completed")

	return c.Status(fiber.StatusCreated).JSON(receipt)
}
