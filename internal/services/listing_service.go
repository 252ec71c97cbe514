package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sprift/internal/models"
	"sprift/internal/repositories"

	"github.com/shopspring/decimal"
)

// UpdateListingInput carries the editable fields of a listing.
type UpdateListingInput struct {
	SellerID     uint
	ClothingType *string
	Size         *string
	Price        decimal.Decimal
	Description  string
	ImagePaths   []string
	Tags         []string
}

// ListingService reads and edits single listings.
type ListingService struct {
	listings repositories.ListingRepository
	log      *slog.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(listings repositories.ListingRepository, log *slog.Logger) *ListingService {
	return &ListingService{listings: listings, log: log}
}

// GetListing returns a listing with its images and reaction counts.
func (s *ListingService) GetListing(ctx context.Context, id uint) (*AffinityListing, error) {
	const op = "services.ListingService.GetListing"

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	stats, err := s.listings.Stats(ctx, []uint{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view := newView(*listing, stats[id])
	return &view, nil
}

// UpdateListing edits a listing owned by in.SellerID.
func (s *ListingService) UpdateListing(ctx context.Context, id uint, in UpdateListingInput) (*AffinityListing, error) {
	const op = "services.ListingService.UpdateListing"
	log := s.log.With(slog.String("op", op), slog.Uint64("listing_id", uint64(id)))

	if !in.Price.IsPositive() {
		return nil, fmt.Errorf("%s: %w: price must be positive", op, ErrValidation)
	}

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if listing.SellerID != in.SellerID {
		return nil, fmt.Errorf("%s: %w: listing %d of seller %d", op, ErrNotFound, id, in.SellerID)
	}
	if listing.Status != models.ListingStatusStaging {
		return nil, fmt.Errorf("%s: %w: listing %d is %s", op, ErrConflict, id, listing.Status)
	}

	err = s.listings.Update(ctx, id, repositories.ListingUpdate{
		ClothingType: in.ClothingType,
		Size:         in.Size,
		Price:        in.Price.Round(2),
		Description:  strings.TrimSpace(in.Description),
		ImagePaths:   in.ImagePaths,
		TagNames:     normalizeTags(in.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	log.Info("listing updated")
	return s.GetListing(ctx, id)
}

// normalizeTags lowercases, trims and de-duplicates tag names.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
