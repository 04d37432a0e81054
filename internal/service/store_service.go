package service

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrStoreNotFound  = apperror.NotFound("store not found")
	ErrStoreInactive  = apperror.BadRequest("store is not active")
	ErrStoreAdminOnly = apperror.Forbidden("only marketplace admins may change commission or activation")
)

type CreateStoreRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=30"`
}

type UpdateStoreRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=150"`
	Description    *string          `json:"description"`
	LogoURL        *string          `json:"logo_url" validate:"omitempty,url"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	Phone          *string          `json:"phone" validate:"omitempty,max=30"`
	CommissionRate *decimal.Decimal `json:"commission_rate" validate:"omitempty,gte=0,lte=100"`
	IsActive       *bool            `json:"is_active"`
}

type StoreService interface {
	Create(actor Actor, req *CreateStoreRequest) (*model.Store, error)
	Update(actor Actor, id uuid.UUID, req *UpdateStoreRequest) (*model.Store, error)
	Delete(actor Actor, id uuid.UUID) error
	Get(id uuid.UUID, viewer *Actor) (*model.Store, error)
	List(filter repository.StoreFilter, p pagination.Params) (*List[model.Store], error)
	// Manageable returns the store when the actor owns it or manages all stores.
	Manageable(actor Actor, id uuid.UUID) (*model.Store, error)
}

type storeService struct {
	repo           repository.StoreRepository
	commissionRate decimal.Decimal
}

func NewStoreService(repo repository.StoreRepository, defaultCommissionRate decimal.Decimal) StoreService {
	return &storeService{repo: repo, commissionRate: defaultCommissionRate}
}

func (s *storeService) Create(actor Actor, req *CreateStoreRequest) (*model.Store, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	storeSlug, err := uniqueSlug(req.Name, s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	store := &model.Store{
		OwnerID:        actor.UserID,
		Name:           req.Name,
		Slug:           storeSlug,
		Description:    req.Description,
		LogoURL:        req.LogoURL,
		Email:          req.Email,
		Phone:          req.Phone,
		CommissionRate: s.commissionRate,
		IsActive:       true,
	}
	store.Audit(actor.Audit())

	if err := s.repo.Create(store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *storeService) Update(actor Actor, id uuid.UUID, req *UpdateStoreRequest) (*model.Store, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	store, err := s.Manageable(actor, id)
	if err != nil {
		return nil, err
	}

	if (req.CommissionRate != nil || req.IsActive != nil) && !actor.HasPrivilege(model.PrivStoreManageAll) {
		return nil, ErrStoreAdminOnly
	}

	if req.Name != nil && *req.Name != store.Name {
		store.Name = *req.Name
		if store.Slug, err = uniqueSlug(store.Name, s.repo.SlugExists); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		store.Description = *req.Description
	}
	if req.LogoURL != nil {
		store.LogoURL = *req.LogoURL
	}
	if req.Email != nil {
		store.Email = *req.Email
	}
	if req.Phone != nil {
		store.Phone = *req.Phone
	}
	if req.CommissionRate != nil {
		store.CommissionRate = req.CommissionRate.Round(2)
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}
	store.Audit(actor.Audit())

	if err := s.repo.Update(store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *storeService) Delete(actor Actor, id uuid.UUID) error {
	if _, err := s.Manageable(actor, id); err != nil {
		return err
	}
	return notFound(s.repo.Delete(id, actor.Audit()), ErrStoreNotFound)
}

func (s *storeService) Get(id uuid.UUID, viewer *Actor) (*model.Store, error) {
	store, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	if !store.IsActive && !canManageStore(viewer, store) {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

func (s *storeService) List(filter repository.StoreFilter, p pagination.Params) (*List[model.Store], error) {
	stores, total, err := s.repo.FindAll(filter, p)
	if err != nil {
		return nil, err
	}
	return &List[model.Store]{Items: stores, Total: total}, nil
}

func (s *storeService) Manageable(actor Actor, id uuid.UUID) (*model.Store, error) {
	store, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	if !canManageStore(&actor, store) {
		return nil, ErrForbidden
	}
	return store, nil
}

func canManageStore(actor *Actor, store *model.Store) bool {
	if actor == nil {
		return false
	}
	return store.OwnerID == actor.UserID || actor.HasPrivilege(model.PrivStoreManageAll)
}
