package handler

import "github.com/gofiber/fiber/v2"

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Health   *HealthHandler
	Coupons  *CouponHandler
	Redeem   *RedeemHandler
	Accounts *AccountHandler
	Store    *StoreHandler
	Referral *ReferralHandler
}

// Register mounts all routes on app.
func Register(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.Check)

	api := app.Group("/api")
	api.Post("/coupons/redeem", h.Redeem.RedeemCoupon)
	api.Get("/accounts/:id", h.Accounts.GetAccount)
	api.Get("/store/costs", h.Store.Costs)
	api.Post("/store/purchase", h.Store.Purchase)

	api.Post("/accounts/:id/referrals", h.Referral.CreateCode)
	api.Get("/accounts/:id/referrals", h.Referral.ListCodes)
	api.Get("/accounts/:id/referrals/activity", h.Referral.Activity)
	api.Delete("/accounts/:id/referrals/:code", h.Referral.DeleteCode)
	api.Post("/referrals/use", h.Referral.UseCode)

	admin := api.Group("/admin")
	// settings before :code so it is not captured as a coupon code
	admin.Get("/coupons/settings", h.Coupons.GetSettings)
	admin.Patch("/coupons/settings", h.Coupons.UpdateSettings)
	admin.Post("/coupons", h.Coupons.CreateCoupon)
	admin.Get("/coupons", h.Coupons.ListCoupons)
	admin.Get("/coupons/:code", h.Coupons.GetCoupon)
	admin.Post("/accounts/:id/credits", h.Accounts.GrantCredits)
	admin.Post("/accounts/:id/debits", h.Accounts.DebitCredits)
}
