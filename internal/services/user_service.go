package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sprift/internal/models"
	"sprift/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FilterInput is a user's explore filter as submitted by the client. A nil
// MaxPrice means no price limit.
type FilterInput struct {
	Gender   string
	MaxPrice *decimal.Decimal
	Sizes    []string
	Types    []string
}

// UserService manages user records synced from the auth provider.
type UserService struct {
	users    repositories.UserRepository
	validate *validator.Validate
	log      *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, validate *validator.Validate, log *slog.Logger) *UserService {
	return &UserService{users: users, validate: validate, log: log}
}

// SyncUser creates the user on first sign-in and refreshes email and username
// afterwards.
func (s *UserService) SyncUser(ctx context.Context, clerkID, email, username string) (*models.User, error) {
	const op = "services.UserService.SyncUser"

	user := &models.User{
		ClerkID:  clerkID,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Username: strings.TrimSpace(username),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user synced", slog.String("op", op), slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// GetByClerkID resolves an authenticated caller to a user.
func (s *UserService) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// SaveFilter validates and stores the user's explore filter.
func (s *UserService) SaveFilter(ctx context.Context, clerkID string, in FilterInput) (*models.FilterPreference, error) {
	const op = "services.UserService.SaveFilter"

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	filter := &models.FilterPreference{
		UserID: user.ID,
		Gender: strings.TrimSpace(in.Gender),
		Sizes:  in.Sizes,
		Types:  in.Types,
	}
	if in.MaxPrice != nil {
		if in.MaxPrice.IsNegative() {
			return nil, fmt.Errorf("%s: %w: maxPrice must not be negative", op, ErrValidation)
		}
		filter.MaxPrice = decimal.NewNullDecimal(in.MaxPrice.Round(2))
	}
	if err := s.validate.Struct(filter); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	if err := s.users.SaveFilter(ctx, filter); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return filter, nil
}
