package handler

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout turns the current cart into an order
// POST /api/v1/orders
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	order, err := h.orderService.Checkout(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Order placed successfully", order)
}

// GET /api/v1/orders?payment_status=
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	orders, err := h.orderService.List(currentActor(c), model.PaymentStatus(c.Query("payment_status")), p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, orders, p)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	order, err := h.orderService.Get(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": order})
}

// GetStoreOrders lists the orders a store has to fulfil
// GET /api/v1/stores/:id/orders?status=
func (h *OrderHandler) GetStoreOrders(c *fiber.Ctx) error {
	storeID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p := pagination.FromQuery(c)
	storeOrders, err := h.orderService.ListStoreOrders(currentActor(c), storeID, model.OrderStatus(c.Query("status")), p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, storeOrders, p)
}

// GET /api/v1/store-orders/:id
func (h *OrderHandler) GetStoreOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	storeOrder, err := h.orderService.GetStoreOrder(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": storeOrder})
}

// UpdateStoreOrderStatus moves a store order to its next status
// PATCH /api/v1/store-orders/:id/status
func (h *OrderHandler) UpdateStoreOrderStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.StoreOrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	storeOrder, err := h.orderService.UpdateStoreOrderStatus(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Order status updated", storeOrder)
}
