package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCart records the actor it was called with.
type stubCart struct {
	actor   service.Actor
	added   *service.AddToCartRequest
	removed uuid.UUID
	err     error
}

func (s *stubCart) Get(actor service.Actor) (*service.CartView, error) {
	s.actor = actor
	return &service.CartView{Subtotal: decimal.RequireFromString("12.5")}, s.err
}

func (s *stubCart) Add(actor service.Actor, req *service.AddToCartRequest) (*service.CartView, error) {
	s.actor, s.added = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return &service.CartView{}, nil
}

func (s *stubCart) UpdateQuantity(actor service.Actor, id uuid.UUID, req *service.UpdateCartRequest) (*service.CartView, error) {
	return &service.CartView{}, s.err
}

func (s *stubCart) Remove(actor service.Actor, id uuid.UUID) error {
	s.actor, s.removed = actor, id
	return s.err
}

func (s *stubCart) Clear(actor service.Actor) error {
	return s.err
}

func newCartApp(cart service.CartService, userID uuid.UUID) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("user_name", "Ada")
		c.Locals("user_privileges", []string{"cart:test"})
		return c.Next()
	})
	h := NewCartHandler(cart, nil)
	app.Get("/cart", h.GetCart)
	app.Post("/cart", h.AddToCart)
	app.Delete("/cart/:id", h.RemoveCartItem)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHandlerPassesActorFromLocals(t *testing.T) {
	cart := &stubCart{}
	userID := uuid.New()
	app := newCartApp(cart, userID)

	resp, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, userID, cart.actor.UserID)
	assert.Equal(t, "Ada", cart.actor.Name)
	assert.True(t, cart.actor.HasPrivilege("cart:test"))

	data := decode(t, resp.Body)["data"].(map[string]interface{})
	assert.Equal(t, "12.5", data["subtotal"])
}

func TestHandlerRendersErrors(t *testing.T) {
	userID := uuid.New()

	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cart", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := newCartApp(&stubCart{}, userID).Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Invalid JSON", decode(t, resp.Body)["error"])
	})

	t.Run("bad id", func(t *testing.T) {
		resp, err := newCartApp(&stubCart{}, userID).Test(httptest.NewRequest("DELETE", "/cart/nope", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("typed service error", func(t *testing.T) {
		cart := &stubCart{err: service.ErrCartLineNotFound}
		id := uuid.New()
		resp, err := newCartApp(cart, userID).Test(httptest.NewRequest("DELETE", "/cart/"+id.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, id, cart.removed)
		assert.Equal(t, "cart item not found", decode(t, resp.Body)["error"])
	})

	t.Run("untyped error is hidden", func(t *testing.T) {
		cart := &stubCart{err: errors.New("connection reset by peer")}
		req := httptest.NewRequest("POST", "/cart", strings.NewReader(`{"variation_id":"`+uuid.NewString()+`","quantity":1}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := newCartApp(cart, userID).Test(req)
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Internal Server Error", decode(t, resp.Body)["error"])
		require.NotNil(t, cart.added)
		assert.Equal(t, 1, cart.added.Quantity)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := newCartApp(&stubCart{}, userID).Test(httptest.NewRequest("GET", "/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestPageRendersEmptyListAsArray(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return page(c, &service.List[string]{Total: 0}, pagination.FromQuery(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?page=0&limit=500", nil))
	require.NoError(t, err)
	body := decode(t, resp.Body)
	assert.Equal(t, []interface{}{}, body["data"])
	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 1, meta["page"])
	assert.EqualValues(t, pagination.MaxLimit, meta["limit"])
}
