package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/service"
	"github.com/polsommer/PanelHosting/internal/settings"
)

// CouponServiceInterface defines the coupon administration operations.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	Get(ctx context.Context, code string) (*model.CouponResponse, error)
	List(ctx context.Context) ([]model.CouponResponse, error)
	Settings() settings.Coupons
	UpdateSettings(u settings.CouponsUpdate) settings.Coupons
}

// CouponHandler handles HTTP requests for coupon administration.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// CreateCoupon handles POST /api/admin/coupons requests to create a new coupon.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	coupon, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return errorResponse(c, fiber.StatusConflict, service.ErrCouponExists.Error())
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return errorResponse(c, fiber.StatusBadRequest, "invalid request")
		}
		return internalError(c, err, "failed to create coupon")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("code", coupon.Code).
		Int("uses", coupon.Uses).
		Int64("credits", coupon.Credits).
		Msg("coupon created")

	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// ListCoupons handles GET /api/admin/coupons.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.List(c.UserContext())
	if err != nil {
		return internalError(c, err, "failed to list coupons")
	}
	return c.JSON(fiber.Map{"data": coupons})
}

// GetCoupon handles GET /api/admin/coupons/:code requests to retrieve coupon details.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	code := utils.CopyString(c.Params("code"))
	if code == "" {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request: code is required")
	}

	coupon, err := h.service.Get(c.UserContext(), code)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "coupon not found")
		}
		return internalError(c, err, "failed to get coupon")
	}

	return c.JSON(coupon)
}

// GetSettings handles GET /api/admin/coupons/settings.
func (h *CouponHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(h.service.Settings())
}

// UpdateSettings handles PATCH /api/admin/coupons/settings. Unknown keys are
// rejected so a typo cannot silently leave a switch unchanged.
func (h *CouponHandler) UpdateSettings(c *fiber.Ctx) error {
	var u settings.CouponsUpdate
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if u.Empty() {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request: no settings provided")
	}

	return c.JSON(h.service.UpdateSettings(u))
}
