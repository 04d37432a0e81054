package handler

import (
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

// CouponHandler serves coupons and credit codes.
type CouponHandler struct {
	couponService service.CouponService
	creditService service.CreditCodeService
}

func NewCouponHandler(couponService service.CouponService, creditService service.CreditCodeService) *CouponHandler {
	return &CouponHandler{couponService: couponService, creditService: creditService}
}

// ---- coupons

// GET /api/v1/coupons?search=
func (h *CouponHandler) GetCoupons(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	coupons, err := h.couponService.List(c.Query("search"), p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, coupons, p)
}

// GET /api/v1/coupons/:id
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	coupon, err := h.couponService.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": coupon})
}

// POST /api/v1/coupons
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req service.CouponRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	coupon, err := h.couponService.Create(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Coupon created successfully", coupon)
}

// PUT /api/v1/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.CouponRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	coupon, err := h.couponService.Update(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Coupon updated successfully", coupon)
}

// DELETE /api/v1/coupons/:id
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.couponService.Delete(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Coupon deleted successfully"})
}

// POST /api/v1/coupons/:id/revoke
func (h *CouponHandler) RevokeCoupon(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	coupon, err := h.couponService.Revoke(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Coupon revoked", coupon)
}

// ValidateCoupon prices a coupon against the current cart
// POST /api/v1/coupons/validate
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	var req service.ValidateCodeRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	quote, err := h.couponService.Validate(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Coupon is valid", quote)
}

// ---- credit codes

// GET /api/v1/credit-codes?search=
func (h *CouponHandler) GetCreditCodes(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	codes, err := h.creditService.List(c.Query("search"), p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, codes, p)
}

// GET /api/v1/credit-codes/:id
func (h *CouponHandler) GetCreditCode(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	code, err := h.creditService.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": code})
}

// POST /api/v1/credit-codes
func (h *CouponHandler) CreateCreditCode(c *fiber.Ctx) error {
	var req service.CreditCodeRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	code, err := h.creditService.Create(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Credit code created successfully", code)
}

// PUT /api/v1/credit-codes/:id
func (h *CouponHandler) UpdateCreditCode(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.CreditCodeRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	code, err := h.creditService.Update(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Credit code updated successfully", code)
}

// DELETE /api/v1/credit-codes/:id
func (h *CouponHandler) DeleteCreditCode(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.creditService.Delete(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Credit code deleted successfully"})
}

// POST /api/v1/credit-codes/:id/revoke
func (h *CouponHandler) RevokeCreditCode(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	code, err := h.creditService.Revoke(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Credit code revoked", code)
}

// POST /api/v1/credit-codes/validate
func (h *CouponHandler) ValidateCreditCode(c *fiber.Ctx) error {
	var req service.ValidateCodeRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	quote, err := h.creditService.Validate(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Credit code is valid", quote)
}
