package services

import (
	"context"
	"fmt"
	"log/slog"

	"sprift/internal/models"
	"sprift/internal/repositories"
)

// ReactionService records likes, dislikes, cart and saved-for-later states.
type ReactionService struct {
	users     repositories.UserRepository
	listings  repositories.ListingRepository
	reactions repositories.ReactionRepository
	log       *slog.Logger
}

// NewReactionService creates a new ReactionService.
func NewReactionService(users repositories.UserRepository, listings repositories.ListingRepository, reactions repositories.ReactionRepository, log *slog.Logger) *ReactionService {
	return &ReactionService{users: users, listings: listings, reactions: reactions, log: log}
}

// ParseReactionKind validates a reaction name from a route.
func ParseReactionKind(s string) (models.ReactionKind, error) {
	switch k := models.ReactionKind(s); k {
	case models.ReactionLike, models.ReactionDislike, models.ReactionCart, models.ReactionSave:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown reaction %q", ErrValidation, s)
	}
}

// React puts the listing into the given state for the user, clearing any
// other state it was in.
func (s *ReactionService) React(ctx context.Context, clerkID string, listingID uint, kind models.ReactionKind) error {
	const op = "services.ReactionService.React"

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}
	if listing.SellerID == user.ID {
		return fmt.Errorf("%s: %w: cannot react to own listing %d", op, ErrValidation, listingID)
	}
	if listing.Status != models.ListingStatusStaging {
		return fmt.Errorf("%s: %w: listing %d is %s", op, ErrConflict, listingID, listing.Status)
	}

	if err := s.reactions.Set(ctx, kind, user.ID, listingID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("reaction stored", slog.String("op", op), slog.String("kind", string(kind)),
		slog.Uint64("user_id", uint64(user.ID)), slog.Uint64("listing_id", uint64(listingID)))
	return nil
}

// RemoveFromCart takes the listing out of the user's cart.
func (s *ReactionService) RemoveFromCart(ctx context.Context, clerkID string, listingID uint) error {
	const op = "services.ReactionService.RemoveFromCart"

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}
	n, err := s.reactions.RemoveFromCart(ctx, user.ID, []uint{listingID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w: listing %d is not in the cart", op, ErrNotFound, listingID)
	}
	return nil
}
