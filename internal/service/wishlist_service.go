package service

import (
	"errors"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrWishlistItemNotFound = apperror.NotFound("wishlist item not found")

type WishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
}

type WishlistService interface {
	List(actor Actor) ([]model.Wishlist, error)
	// Add is idempotent: adding a product twice returns the existing entry.
	Add(actor Actor, req *WishlistRequest) (*model.Wishlist, error)
	Remove(actor Actor, productID uuid.UUID) error
}

type wishlistService struct {
	repo        repository.WishlistRepository
	productRepo repository.ProductRepository
	pricer      *Pricer
}

func NewWishlistService(repo repository.WishlistRepository, productRepo repository.ProductRepository, pricer *Pricer) WishlistService {
	return &wishlistService{repo: repo, productRepo: productRepo, pricer: pricer}
}

func (s *wishlistService) List(actor Actor) ([]model.Wishlist, error) {
	items, err := s.repo.FindByUser(actor.UserID)
	if err != nil {
		return nil, err
	}
	at := now()
	for i := range items {
		if items[i].Product == nil {
			continue
		}
		if err := s.pricer.Annotate(items[i].Product.Variations, at); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *wishlistService) Add(actor Actor, req *WishlistRequest) (*model.Wishlist, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if !product.IsPublished {
		return nil, ErrProductNotFound
	}

	existing, err := s.repo.FindByUserAndProduct(actor.UserID, req.ProductID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.Wishlist{UserID: actor.UserID, ProductID: req.ProductID}
	item.Audit(actor.Audit())
	if err := s.repo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *wishlistService) Remove(actor Actor, productID uuid.UUID) error {
	return notFound(s.repo.Delete(actor.UserID, productID), ErrWishlistItemNotFound)
}
