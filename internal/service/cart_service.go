package service

import (
	"errors"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/pricing"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartLineNotFound   = apperror.NotFound("cart item not found")
	ErrCartEmpty          = apperror.BadRequest("cart is empty")
	ErrInsufficientStock  = apperror.BadRequest("insufficient stock")
	ErrProductUnavailable = apperror.BadRequest("product is not available")
)

type AddToCartRequest struct {
	VariationID uuid.UUID `json:"variation_id" validate:"uuid_required"`
	Quantity    int       `json:"quantity" validate:"gte=1"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// CartStoreGroup sums the cart lines of one store.
type CartStoreGroup struct {
	StoreID   uuid.UUID       `json:"store_id"`
	StoreName string          `json:"store_name"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

type CartView struct {
	Items    []model.Cart     `json:"items"`
	Stores   []CartStoreGroup `json:"stores"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

type CartService interface {
	Get(actor Actor) (*CartView, error)
	Add(actor Actor, req *AddToCartRequest) (*CartView, error)
	UpdateQuantity(actor Actor, id uuid.UUID, req *UpdateCartRequest) (*CartView, error)
	Remove(actor Actor, id uuid.UUID) error
	Clear(actor Actor) error
}

type cartService struct {
	cartRepo      repository.CartRepository
	variationRepo repository.VariationRepository
	pricer        *Pricer
}

func NewCartService(cartRepo repository.CartRepository, variationRepo repository.VariationRepository, pricer *Pricer) CartService {
	return &cartService{cartRepo: cartRepo, variationRepo: variationRepo, pricer: pricer}
}

func (s *cartService) Get(actor Actor) (*CartView, error) {
	lines, err := s.cartRepo.FindByUser(actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := priceCartLines(s.pricer, lines); err != nil {
		return nil, err
	}

	// Lines whose variation or product was deleted are left out entirely.
	view := &CartView{Items: make([]model.Cart, 0, len(lines)), Stores: []CartStoreGroup{}, Subtotal: decimal.Zero}
	groups := make(map[uuid.UUID]int)
	for _, line := range lines {
		if line.Variation == nil || line.Variation.Product == nil {
			continue
		}
		view.Items = append(view.Items, line)
		product := line.Variation.Product
		idx, ok := groups[product.StoreID]
		if !ok {
			group := CartStoreGroup{StoreID: product.StoreID, Subtotal: decimal.Zero}
			if product.Store != nil {
				group.StoreName = product.Store.Name
			}
			view.Stores = append(view.Stores, group)
			idx = len(view.Stores) - 1
			groups[product.StoreID] = idx
		}
		view.Stores[idx].Subtotal = view.Stores[idx].Subtotal.Add(line.LineTotal)
		view.Stores[idx].ItemCount += line.Quantity
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
	}
	return view, nil
}

func (s *cartService) Add(actor Actor, req *AddToCartRequest) (*CartView, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	variation, err := s.variationRepo.FindByID(req.VariationID)
	if err != nil {
		return nil, notFound(err, ErrVariationNotFound)
	}
	if variation.Product == nil || !variation.Product.IsPublished {
		return nil, ErrProductUnavailable
	}

	existing, err := s.cartRepo.FindByUserAndVariation(actor.UserID, req.VariationID)
	switch {
	case err == nil:
		quantity := existing.Quantity + req.Quantity
		if quantity > variation.Stock {
			return nil, ErrInsufficientStock
		}
		if err := s.cartRepo.UpdateQuantity(existing.ID, quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if req.Quantity > variation.Stock {
			return nil, ErrInsufficientStock
		}
		line := &model.Cart{UserID: actor.UserID, VariationID: req.VariationID, Quantity: req.Quantity}
		line.Audit(actor.Audit())
		if err := s.cartRepo.Create(line); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.Get(actor)
}

func (s *cartService) UpdateQuantity(actor Actor, id uuid.UUID, req *UpdateCartRequest) (*CartView, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	line, err := s.ownLine(actor, id)
	if err != nil {
		return nil, err
	}
	if line.Variation == nil || req.Quantity > line.Variation.Stock {
		return nil, ErrInsufficientStock
	}
	if err := s.cartRepo.UpdateQuantity(id, req.Quantity); err != nil {
		return nil, err
	}
	return s.Get(actor)
}

func (s *cartService) Remove(actor Actor, id uuid.UUID) error {
	if _, err := s.ownLine(actor, id); err != nil {
		return err
	}
	return notFound(s.cartRepo.Delete(id), ErrCartLineNotFound)
}

func (s *cartService) Clear(actor Actor) error {
	return s.cartRepo.ClearUser(actor.UserID)
}

func (s *cartService) ownLine(actor Actor, id uuid.UUID) (*model.Cart, error) {
	line, err := s.cartRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCartLineNotFound)
	}
	if line.UserID != actor.UserID {
		return nil, ErrCartLineNotFound
	}
	return line, nil
}

// priceCartLines fills UnitPrice, PriceSource and LineTotal. Lines must
// have Variation loaded.
func priceCartLines(pricer *Pricer, lines []model.Cart) error {
	variations := make([]model.ProductVariation, 0, len(lines))
	for _, line := range lines {
		if line.Variation != nil {
			variations = append(variations, *line.Variation)
		}
	}
	quotes, err := pricer.Quotes(variations, now())
	if err != nil {
		return err
	}
	for i := range lines {
		q, ok := quotes[lines[i].VariationID]
		if !ok {
			continue
		}
		lines[i].UnitPrice = q.Price
		lines[i].PriceSource = string(q.Source)
		lines[i].LineTotal = pricing.Line{UnitPrice: q.Price, Quantity: lines[i].Quantity}.Total()
	}
	return nil
}
