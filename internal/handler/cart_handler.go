package handler

import (
	"go-marketplace-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	cartService     service.CartService
	wishlistService service.WishlistService
}

func NewCartHandler(cartService service.CartService, wishlistService service.WishlistService) *CartHandler {
	return &CartHandler{cartService: cartService, wishlistService: wishlistService}
}

// GetCart returns the priced cart grouped by store
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.Get(currentActor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": cart})
}

// POST /api/v1/cart
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	var req service.AddToCartRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	cart, err := h.cartService.Add(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Item added to cart", cart)
}

// PATCH /api/v1/cart/:id
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateCartRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	cart, err := h.cartService.UpdateQuantity(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Cart updated", cart)
}

// DELETE /api/v1/cart/:id
func (h *CartHandler) RemoveCartItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.cartService.Remove(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.cartService.Clear(currentActor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// GET /api/v1/wishlist
func (h *CartHandler) GetWishlist(c *fiber.Ctx) error {
	items, err := h.wishlistService.List(currentActor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": items})
}

// POST /api/v1/wishlist
func (h *CartHandler) AddToWishlist(c *fiber.Ctx) error {
	var req service.WishlistRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	item, err := h.wishlistService.Add(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Product added to wishlist", item)
}

// DELETE /api/v1/wishlist/:productId
func (h *CartHandler) RemoveFromWishlist(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.wishlistService.Remove(currentActor(c), productID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product removed from wishlist"})
}
