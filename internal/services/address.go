package service

import (
	"context"

	apperrors "github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/models"
	repository "github.com/freshmart/storefront/internal/repositories"
)

// AddressService manages the shipping addresses an order commit resolves
// against. The owning account always comes from the authenticated claims,
// never from the request body.
type AddressService struct {
	addresses repository.AddressRepository
}

func NewAddressService(addresses repository.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) CreateAddress(ctx context.Context, userID int64, req *models.CreateAddressRequest) (*models.Address, error) {

	address := &models.Address{
		UserID:   userID,
		Receiver: req.Receiver,
		Province: req.Province,
		City:     req.City,
		District: req.District,
		Detail:   req.Detail,
		Phone:    req.Phone,
	}

	if err := s.addresses.CreateAddress(ctx, address); err != nil {
		return nil, apperrors.DatabaseError("Failed to create address").WithError(err)
	}

	return address, nil
}
