package address

import (
	"context"
	"errors"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/utils"

	"go.uber.org/zap"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Service interface {
	List(ctx context.Context) ([]*Address, error)
	Get(ctx context.Context, addressID int64) (*Address, error)

	Create(ctx context.Context, input CreateAddressInput) (*Address, error)
	Update(ctx context.Context, input UpdateAddressInput) (*Address, error)
	Delete(ctx context.Context, addressID int64) error

	SetDefaultAddress(ctx context.Context, addressID int64) error

	// Phone resolves the contact number for an address without ownership
	// checks; the order flow uses it for settlement SMS.
	Phone(ctx context.Context, addressID int64) (string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Address, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Get(ctx context.Context, addressID int64) (*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Get"),
		zap.Int64("address_id", addressID),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if addr.UserID != userID || !addr.IsActive {
		log.Warn("address belongs to another user")
		return nil, ErrAddressNotFound
	}
	return addr, nil
}

func (s *service) Create(ctx context.Context, input CreateAddressInput) (*Address, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	if input.SetAsDefault {
		if err := s.repo.ClearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	a := &Address{
		UserID:    userID,
		Name:      input.Name,
		Phone:     input.Phone,
		Address1:  input.AddressLine1,
		Address2:  input.AddressLine2,
		City:      input.City,
		Province:  input.Province,
		Postal:    input.PostalCode,
		IsDefault: input.SetAsDefault,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		logger.FromCtx(ctx).Error("creating address failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, input UpdateAddressInput) (*Address, error) {
	addr, err := s.Get(ctx, input.AddressID)
	if err != nil {
		return nil, err
	}

	if input.SetAsDefault && !addr.IsDefault {
		if err := s.repo.ClearDefault(ctx, addr.UserID); err != nil {
			return nil, err
		}
	}

	addr.Name = input.Name
	addr.Phone = input.Phone
	addr.Address1 = input.AddressLine1
	addr.Address2 = input.AddressLine2
	addr.City = input.City
	addr.Province = input.Province
	addr.Postal = input.PostalCode
	addr.IsDefault = input.SetAsDefault

	if err := s.repo.Update(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *service) Delete(ctx context.Context, addressID int64) error {
	if _, err := s.Get(ctx, addressID); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, addressID)
}

func (s *service) SetDefaultAddress(ctx context.Context, addressID int64) error {
	addr, err := s.Get(ctx, addressID)
	if err != nil {
		return err
	}
	if err := s.repo.ClearDefault(ctx, addr.UserID); err != nil {
		return err
	}
	return s.repo.SetDefault(ctx, addr.UserID, addressID)
}

func (s *service) Phone(ctx context.Context, addressID int64) (string, error) {
	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return "", err
	}
	return addr.Phone, nil
}
