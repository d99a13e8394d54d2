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

// RedeemServiceInterface defines the interface for coupon redemption.
type RedeemServiceInterface interface {
	Redeem(ctx context.Context, accountID, code string) (*model.Redemption, error)
}

// RedeemHandler handles HTTP requests for coupon redemption.
type RedeemHandler struct {
	service   RedeemServiceInterface
	validator *validator.Validate
}

// NewRedeemHandler creates a new RedeemHandler with the given service and validator.
func NewRedeemHandler(svc RedeemServiceInterface, v *validator.Validate) *RedeemHandler {
	return &RedeemHandler{service: svc, validator: v}
}

// RedeemCoupon handles POST /api/coupons/redeem requests.
func (h *RedeemHandler) RedeemCoupon(c *fiber.Ctx) error {
	var req model.RedeemCouponRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	redemption, err := h.service.Redeem(c.UserContext(), req.AccountID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return errorResponse(c, fiber.StatusNotFound, "coupon not found")
		case errors.Is(err, service.ErrCouponExpired):
			return errorResponse(c, fiber.StatusGone, "coupon has expired")
		case errors.Is(err, service.ErrCouponExhausted):
			return errorResponse(c, fiber.StatusGone, "coupon has no uses left")
		case errors.Is(err, service.ErrAlreadyRedeemed):
			return errorResponse(c, fiber.StatusConflict, "coupon already redeemed by account")
		case errors.Is(err, service.ErrCouponsDisabled):
			return errorResponse(c, fiber.StatusForbidden, "coupons are disabled")
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("account_id", req.AccountID).
			Str("code", req.Code).
			Msg("failed to redeem coupon")
		return errorResponse(c, fiber.StatusInternalServerError, "internal server error")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("account_id", req.AccountID).
		Str("code", req.Code).
		Int64("credits", redemption.Credits).
		Msg("coupon redeemed")

	return c.JSON(redemption)
}
