package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"sprift/internal/models"
	"sprift/internal/repositories"
)

// DefaultFeedPageSize is the number of listings on one explore page.
const DefaultFeedPageSize = 50

// FeedRequest asks for one explore page. Cursor is the value returned by the
// previous page, empty for the first one.
type FeedRequest struct {
	UserID       uint
	ApplyFilters bool
	Cursor       string
}

// Feed is one explore page. An empty Cursor means there is nothing more to
// page through.
type Feed struct {
	Listings []AffinityListing
	Cursor   string
}

// FeedService assembles the explore feed.
type FeedService struct {
	affinity *AffinityEngine
	users    repositories.UserRepository
	listings repositories.ListingRepository
	pageSize int
	log      *slog.Logger
}

// NewFeedService creates a new FeedService.
func NewFeedService(affinity *AffinityEngine, users repositories.UserRepository, listings repositories.ListingRepository, pageSize int, log *slog.Logger) *FeedService {
	if pageSize <= 0 {
		pageSize = DefaultFeedPageSize
	}
	return &FeedService{
		affinity: affinity,
		users:    users,
		listings: listings,
		pageSize: pageSize,
		log:      log,
	}
}

// AssembleFeed merges the affinity listings with the newest listings the user
// has not seen, truncates to the page size and then applies the user's saved
// filters when asked to. A follow-up page (non-empty Cursor) only continues
// the newest-listings part, which also carries the affinity listings that did
// not fit on the first page.
func (s *FeedService) AssembleFeed(ctx context.Context, req FeedRequest) (*Feed, error) {
	const op = "services.FeedService.AssembleFeed"
	log := s.log.With(slog.String("op", op), slog.Uint64("user_id", uint64(req.UserID)))

	var beforeID uint
	if req.Cursor != "" {
		n, err := strconv.ParseUint(req.Cursor, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: invalid cursor %q", ErrValidation, req.Cursor)
		}
		beforeID = uint(n)
	}

	affinity, err := s.affinity.ComputeAffinityListings(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	affinityIDs := make([]uint, 0, len(affinity))
	for _, a := range affinity {
		affinityIDs = append(affinityIDs, a.Listing.ID)
	}

	// Only the affinity listings that fit on the first page leave the newest
	// stream; the overflow stays reachable through the cursor.
	shownAffinity := distinctIDs(affinityIDs)
	if len(shownAffinity) > s.pageSize {
		shownAffinity = shownAffinity[:s.pageSize]
	}

	fallback, err := s.listings.Fallback(ctx, repositories.FallbackQuery{
		UserID:     req.UserID,
		ExcludeIDs: shownAffinity,
		BeforeID:   beforeID,
		Take:       s.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	fallbackIDs := make([]uint, 0, len(fallback))
	for _, l := range fallback {
		fallbackIDs = append(fallbackIDs, l.ID)
	}
	stats, err := s.listings.Stats(ctx, fallbackIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidates := make([]AffinityListing, 0, len(affinity)+len(fallback))
	if beforeID == 0 {
		candidates = append(candidates, affinity...)
	}
	for _, l := range fallback {
		candidates = append(candidates, newView(l, stats[l.ID]))
	}

	page := make([]AffinityListing, 0, s.pageSize)
	seen := make(map[uint]bool, len(candidates))
	for _, c := range candidates {
		if len(page) == s.pageSize {
			break
		}
		if seen[c.Listing.ID] {
			continue
		}
		seen[c.Listing.ID] = true
		page = append(page, c)
	}

	cursor := nextCursor(page, fallback, s.pageSize)

	if req.ApplyFilters {
		filter, err := s.users.GetFilter(ctx, req.UserID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			filter = nil
		case err != nil:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		page = applyFilter(page, filter)
	}

	log.Debug("feed assembled",
		slog.Int("affinity", len(affinity)),
		slog.Int("fallback", len(fallback)),
		slog.Int("returned", len(page)),
		slog.String("cursor", cursor))

	return &Feed{Listings: page, Cursor: cursor}, nil
}

// nextCursor returns the keyset position after this page in the newest
// listings stream. The next page continues with ids below the cursor.
func nextCursor(page []AffinityListing, fallback []models.Listing, take int) string {
	if len(fallback) == 0 {
		return ""
	}
	inPage := make(map[uint]bool, len(page))
	for _, p := range page {
		inPage[p.Listing.ID] = true
	}

	var lastShown uint
	shown := 0
	for _, l := range fallback {
		if !inPage[l.ID] {
			break
		}
		lastShown = l.ID
		shown++
	}

	switch {
	case shown == len(fallback) && len(fallback) < take:
		return ""
	case shown == 0:
		// The page was filled before any newest listing fit: restart the
		// stream at its head.
		return strconv.FormatUint(uint64(fallback[0].ID)+1, 10)
	default:
		return strconv.FormatUint(uint64(lastShown), 10)
	}
}

// applyFilter drops listings that do not satisfy f. A nil filter keeps all.
func applyFilter(listings []AffinityListing, f *models.FilterPreference) []AffinityListing {
	if f == nil {
		return listings
	}
	out := make([]AffinityListing, 0, len(listings))
	for _, l := range listings {
		if matchesFilter(&l.Listing, f) {
			out = append(out, l)
		}
	}
	return out
}

func matchesFilter(l *models.Listing, f *models.FilterPreference) bool {
	if len(f.Sizes) > 0 && !slices.Contains([]string(f.Sizes), l.Size) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains([]string(f.Types), l.ClothingType) {
		return false
	}
	if f.Gender != "" && f.Gender != models.GenderAny && f.Gender != l.Gender {
		return false
	}
	if f.MaxPrice.Valid && l.Price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}
	return true
}
