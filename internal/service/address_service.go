package service

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
)

var ErrAddressNotFound = apperror.NotFound("address not found")

type AddressRequest struct {
	Label      string `json:"label" validate:"max=50"`
	Recipient  string `json:"recipient" validate:"required,max=150"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	Country    string `json:"country" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	IsDefault  bool   `json:"is_default"`
}

type AddressService interface {
	Create(actor Actor, req *AddressRequest) (*model.UserAddress, error)
	Update(actor Actor, id uuid.UUID, req *AddressRequest) (*model.UserAddress, error)
	Delete(actor Actor, id uuid.UUID) error
	Get(actor Actor, id uuid.UUID) (*model.UserAddress, error)
	List(actor Actor) ([]model.UserAddress, error)
}

type addressService struct {
	repo repository.AddressRepository
}

func NewAddressService(repo repository.AddressRepository) AddressService {
	return &addressService{repo: repo}
}

func (s *addressService) Create(actor Actor, req *AddressRequest) (*model.UserAddress, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	count, err := s.repo.CountByUser(actor.UserID)
	if err != nil {
		return nil, err
	}

	address := &model.UserAddress{UserID: actor.UserID}
	applyAddress(address, req)
	// The first address is always the default one.
	if count == 0 {
		address.IsDefault = true
	}
	address.Audit(actor.Audit())

	if err := s.repo.Create(address); err != nil {
		return nil, err
	}
	if address.IsDefault {
		if err := s.repo.ClearDefault(actor.UserID, address.ID); err != nil {
			return nil, err
		}
	}
	return address, nil
}

func (s *addressService) Update(actor Actor, id uuid.UUID, req *AddressRequest) (*model.UserAddress, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	address, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	wasDefault := address.IsDefault
	applyAddress(address, req)
	// Keep a default until another address takes it over.
	if wasDefault && !address.IsDefault {
		address.IsDefault = true
	}
	address.Audit(actor.Audit())

	if err := s.repo.Update(address); err != nil {
		return nil, err
	}
	if address.IsDefault {
		if err := s.repo.ClearDefault(actor.UserID, address.ID); err != nil {
			return nil, err
		}
	}
	return address, nil
}

func (s *addressService) Delete(actor Actor, id uuid.UUID) error {
	if _, err := s.Get(actor, id); err != nil {
		return err
	}
	return notFound(s.repo.Delete(id, actor.Audit()), ErrAddressNotFound)
}

func (s *addressService) Get(actor Actor, id uuid.UUID) (*model.UserAddress, error) {
	address, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrAddressNotFound)
	}
	// Other users' addresses look missing rather than forbidden.
	if address.UserID != actor.UserID {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) List(actor Actor) ([]model.UserAddress, error) {
	return s.repo.FindByUser(actor.UserID)
}

func applyAddress(address *model.UserAddress, req *AddressRequest) {
	address.Label = req.Label
	address.Recipient = req.Recipient
	address.Phone = req.Phone
	address.Line1 = req.Line1
	address.Line2 = req.Line2
	address.City = req.City
	address.State = req.State
	address.Country = req.Country
	address.PostalCode = req.PostalCode
	address.IsDefault = req.IsDefault
}
