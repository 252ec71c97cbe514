package services

import (
	"context"
	"fmt"
	"log/slog"

	"sprift/internal/models"
	"sprift/internal/repositories"
)

// Image paths shorter than this are discarded as malformed.
const minImagePathLen = 5

// AffinityListing is a listing annotated for the explore feed. Fallback
// entries carry TagsMatched 0 and Liked false.
type AffinityListing struct {
	Listing     models.Listing
	ImagePaths  []string
	Likes       int64
	Dislikes    int64
	Carts       int64
	TagsMatched int64
	Liked       bool
}

// AffinityEngine finds listings a user is likely to care about.
type AffinityEngine struct {
	users    repositories.UserRepository
	listings repositories.ListingRepository
	log      *slog.Logger
}

// NewAffinityEngine creates a new AffinityEngine.
func NewAffinityEngine(users repositories.UserRepository, listings repositories.ListingRepository, log *slog.Logger) *AffinityEngine {
	return &AffinityEngine{users: users, listings: listings, log: log}
}

// ComputeAffinityListings returns the tag-matched listings followed by the
// listings the user liked. A listing may appear in both parts.
func (e *AffinityEngine) ComputeAffinityListings(ctx context.Context, userID uint) ([]AffinityListing, error) {
	const op = "services.AffinityEngine.ComputeAffinityListings"
	log := e.log.With(slog.String("op", op), slog.Uint64("user_id", uint64(userID)))

	if _, err := e.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	matches, err := e.listings.TagMatched(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	liked, err := e.listings.LikedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uint, 0, len(matches)+len(liked))
	for _, m := range matches {
		ids = append(ids, m.ListingID)
	}
	ids = append(ids, liked...)

	views, err := buildViews(ctx, e.listings, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]AffinityListing, 0, len(ids))
	for _, m := range matches {
		v, ok := views[m.ListingID]
		if !ok {
			continue
		}
		v.TagsMatched = m.TagsMatched
		out = append(out, v)
	}
	for _, id := range liked {
		v, ok := views[id]
		if !ok {
			continue
		}
		v.Liked = true
		out = append(out, v)
	}

	log.Debug("affinity computed", slog.Int("tag_matched", len(matches)), slog.Int("liked", len(liked)))
	return out, nil
}

// buildViews loads the listings and their reaction counts.
func buildViews(ctx context.Context, repo repositories.ListingRepository, ids []uint) (map[uint]AffinityListing, error) {
	ids = distinctIDs(ids)
	views := make(map[uint]AffinityListing, len(ids))
	if len(ids) == 0 {
		return views, nil
	}
	listings, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats, err := repo.Stats(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		views[l.ID] = newView(l, stats[l.ID])
	}
	return views, nil
}

func newView(l models.Listing, s repositories.ListingStats) AffinityListing {
	return AffinityListing{
		Listing:    l,
		ImagePaths: CleanImagePaths(l.ImagePaths()),
		Likes:      s.Likes,
		Dislikes:   s.Dislikes,
		Carts:      s.Carts,
	}
}

// CleanImagePaths keeps the first occurrence of each path long enough to be
// well-formed.
func CleanImagePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if len(p) < minImagePathLen || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func distinctIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
