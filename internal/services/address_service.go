package services

import (
	"context"
	"fmt"
	"log/slog"

	"sprift/internal/repositories"
	"sprift/pkg/shippo"
)

// AddressValidator checks an address with the carrier.
type AddressValidator interface {
	ValidateAddress(ctx context.Context, addr shippo.Address) (*shippo.AddressValidation, error)
}

// AddressResult is the carrier's verdict on a user's shipping address.
type AddressResult struct {
	Valid    bool
	Messages []string
}

// AddressService validates stored shipping addresses.
type AddressService struct {
	users     repositories.UserRepository
	validator AddressValidator
	log       *slog.Logger
}

// NewAddressService creates a new AddressService.
func NewAddressService(users repositories.UserRepository, validator AddressValidator, log *slog.Logger) *AddressService {
	return &AddressService{users: users, validator: validator, log: log}
}

// ValidateAddress validates the user's stored shipping address. An incomplete
// address is a validation error; an address the carrier rejects is a normal
// result with Valid false.
func (s *AddressService) ValidateAddress(ctx context.Context, clerkID string) (*AddressResult, error) {
	const op = "services.AddressService.ValidateAddress"

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if !user.HasShippingAddress() {
		return nil, fmt.Errorf("%s: %w: shipping address of user %d is incomplete", op, ErrValidation, user.ID)
	}

	res, err := s.validator.ValidateAddress(ctx, addressOf(user))
	if err != nil {
		s.log.Error("address validation failed", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, external("address validation", err))
	}

	out := &AddressResult{Valid: res.ValidationResults.IsValid, Messages: []string{}}
	for _, m := range res.ValidationResults.Messages {
		out.Messages = append(out.Messages, m.Text)
	}
	return out, nil
}
