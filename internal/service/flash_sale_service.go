package service

import (
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrFlashSaleNotFound = apperror.NotFound("flash sale not found")
	ErrFlashSaleWindow   = apperror.BadRequest("start_at must be before end_at")
	ErrFlashPriceTooHigh = apperror.BadRequest("flash price must be lower than the variation price")
	ErrDuplicateItem     = apperror.BadRequest("a variation can appear only once per flash sale")
)

type FlashSaleRequest struct {
	Name     string    `json:"name" validate:"required,max=150"`
	StartAt  time.Time `json:"start_at" validate:"required"`
	EndAt    time.Time `json:"end_at" validate:"required"`
	IsActive *bool     `json:"is_active"`
}

type FlashSaleItemRequest struct {
	VariationID uuid.UUID       `json:"variation_id" validate:"uuid_required"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
}

type FlashSaleItemsRequest struct {
	Items []FlashSaleItemRequest `json:"items" validate:"dive"`
}

type FlashSaleService interface {
	Create(actor Actor, req *FlashSaleRequest) (*model.FlashSale, error)
	Update(actor Actor, id uuid.UUID, req *FlashSaleRequest) (*model.FlashSale, error)
	Delete(actor Actor, id uuid.UUID) error
	Get(id uuid.UUID) (*model.FlashSale, error)
	List(p pagination.Params) (*List[model.FlashSale], error)
	Active() ([]model.FlashSale, error)
	ReplaceItems(actor Actor, id uuid.UUID, req *FlashSaleItemsRequest) (*model.FlashSale, error)
}

type flashSaleService struct {
	repo          repository.FlashSaleRepository
	variationRepo repository.VariationRepository
}

func NewFlashSaleService(repo repository.FlashSaleRepository, variationRepo repository.VariationRepository) FlashSaleService {
	return &flashSaleService{repo: repo, variationRepo: variationRepo}
}

func (s *flashSaleService) Create(actor Actor, req *FlashSaleRequest) (*model.FlashSale, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, ErrFlashSaleWindow
	}

	sale := &model.FlashSale{
		Name:     req.Name,
		StartAt:  req.StartAt.UTC(),
		EndAt:    req.EndAt.UTC(),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	sale.Audit(actor.Audit())
	if err := s.repo.Create(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *flashSaleService) Update(actor Actor, id uuid.UUID, req *FlashSaleRequest) (*model.FlashSale, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, ErrFlashSaleWindow
	}

	sale, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrFlashSaleNotFound)
	}
	sale.Name = req.Name
	sale.StartAt = req.StartAt.UTC()
	sale.EndAt = req.EndAt.UTC()
	if req.IsActive != nil {
		sale.IsActive = *req.IsActive
	}
	sale.Audit(actor.Audit())

	if err := s.repo.Update(sale); err != nil {
		return nil, err
	}
	return s.repo.FindByID(id)
}

func (s *flashSaleService) Delete(actor Actor, id uuid.UUID) error {
	return notFound(s.repo.Delete(id, actor.Audit()), ErrFlashSaleNotFound)
}

func (s *flashSaleService) Get(id uuid.UUID) (*model.FlashSale, error) {
	sale, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrFlashSaleNotFound)
	}
	return sale, nil
}

func (s *flashSaleService) List(p pagination.Params) (*List[model.FlashSale], error) {
	sales, total, err := s.repo.FindAll(p)
	if err != nil {
		return nil, err
	}
	return &List[model.FlashSale]{Items: sales, Total: total}, nil
}

func (s *flashSaleService) Active() ([]model.FlashSale, error) {
	return s.repo.FindActive(now())
}

func (s *flashSaleService) ReplaceItems(actor Actor, id uuid.UUID, req *FlashSaleItemsRequest) (*model.FlashSale, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(id); err != nil {
		return nil, notFound(err, ErrFlashSaleNotFound)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, item := range req.Items {
		if seen[item.VariationID] {
			return nil, ErrDuplicateItem
		}
		seen[item.VariationID] = true
		ids = append(ids, item.VariationID)
	}

	variations, err := s.variationRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.ProductVariation, len(variations))
	for _, v := range variations {
		byID[v.ID] = v
	}

	items := make([]model.FlashSaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		variation, ok := byID[item.VariationID]
		if !ok {
			return nil, ErrVariationNotFound
		}
		if !item.Price.LessThan(variation.Price) {
			return nil, ErrFlashPriceTooHigh
		}
		entry := model.FlashSaleItem{VariationID: item.VariationID, Price: item.Price.Round(2)}
		entry.Audit(actor.Audit())
		items = append(items, entry)
	}

	if err := s.repo.ReplaceItems(id, items); err != nil {
		return nil, err
	}
	return s.repo.FindByID(id)
}
