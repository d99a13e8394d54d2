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

// ReferralServiceInterface defines the referral program operations.
type ReferralServiceInterface interface {
	Reward() int64
	CreateCode(ctx context.Context, accountID string) (*model.ReferralCode, error)
	ListCodes(ctx context.Context, accountID string) ([]model.ReferralCode, error)
	DeleteCode(ctx context.Context, accountID, code string) error
	Activity(ctx context.Context, accountID string) ([]model.ReferralActivity, error)
	UseCode(ctx context.Context, accountID, code string) (*model.ReferralActivity, error)
}

// ReferralHandler handles HTTP requests for referral codes.
type ReferralHandler struct {
	service   ReferralServiceInterface
	validator *validator.Validate
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(svc ReferralServiceInterface, v *validator.Validate) *ReferralHandler {
	return &ReferralHandler{service: svc, validator: v}
}

// CreateCode handles POST /api/accounts/:id/referrals.
func (h *ReferralHandler) CreateCode(c *fiber.Ctx) error {
	id, ok, err := accountParam(c, h.validator)
	if !ok {
		return err
	}

	code, err := h.service.CreateCode(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrReferralLimit) {
			return errorResponse(c, fiber.StatusConflict, "referral code limit reached")
		}
		return internalError(c, err, "failed to create referral code")
	}
	return c.Status(fiber.StatusCreated).JSON(code)
}

// ListCodes handles GET /api/accounts/:id/referrals.
func (h *ReferralHandler) ListCodes(c *fiber.Ctx) error {
	id, ok, err := accountParam(c, h.validator)
	if !ok {
		return err
	}

	codes, err := h.service.ListCodes(c.UserContext(), id)
	if err != nil {
		return internalError(c, err, "failed to list referral codes")
	}
	return c.JSON(fiber.Map{"data": codes, "reward": h.service.Reward()})
}

// DeleteCode handles DELETE /api/accounts/:id/referrals/:code.
func (h *ReferralHandler) DeleteCode(c *fiber.Ctx) error {
	id, ok, err := accountParam(c, h.validator)
	if !ok {
		return err
	}

	if err := h.service.DeleteCode(c.UserContext(), id, utils.CopyString(c.Params("code"))); err != nil {
		if errors.Is(err, service.ErrReferralNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "referral code not found")
		}
		return internalError(c, err, "failed to delete referral code")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Activity handles GET /api/accounts/:id/referrals/activity.
func (h *ReferralHandler) Activity(c *fiber.Ctx) error {
	id, ok, err := accountParam(c, h.validator)
	if !ok {
		return err
	}

	activity, err := h.service.Activity(c.UserContext(), id)
	if err != nil {
		return internalError(c, err, "failed to list referral activity")
	}
	return c.JSON(fiber.Map{"data": activity})
}

// UseCode handles POST /api/referrals/use.
func (h *ReferralHandler) UseCode(c *fiber.Ctx) error {
	var req model.UseReferralRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	use, err := h.service.UseCode(c.UserContext(), req.AccountID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReferralNotFound):
			return errorResponse(c, fiber.StatusNotFound, "referral code not found")
		case errors.Is(err, service.ErrSelfReferral):
			return errorResponse(c, fiber.StatusBadRequest, "cannot use your own referral code")
		case errors.Is(err, service.ErrAlreadyReferred):
			return errorResponse(c, fiber.StatusConflict, "account has already used a referral code")
		}
		return internalError(c, err, "failed to use referral code")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("account_id", req.AccountID).
		Str("code", req.Code).
		Msg("referral code used")

	return c.JSON(use)
}
