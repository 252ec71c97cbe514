package handlers

import (
	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FeedHandler serves the explore feed.
type FeedHandler struct {
	users    *services.UserService
	feed     *services.FeedService
	validate *validator.Validate
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(users *services.UserService, feed *services.FeedService, validate *validator.Validate) *FeedHandler {
	return &FeedHandler{users: users, feed: feed, validate: validate}
}

// RegisterRoutes registers the explore route.
func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/recommend/explore", h.HandleExplore)
}

// ExploreRequest asks for one explore page.
type ExploreRequest struct {
	ClerkID string `json:"clerkId" validate:"required,max=64"`
	Filter  bool   `json:"filter"`
	Cursor  string `json:"cursor" validate:"omitempty,numeric"`
}

// ExploreResponse is one explore page.
type ExploreResponse struct {
	Listings        []ListingDTO `json:"listings"`
	CursorListingID string       `json:"cursorListingId"`
}

// HandleExplore returns the caller's next explore page.
func (h *FeedHandler) HandleExplore(c *fiber.Ctx) error {
	var req ExploreRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, req.ClerkID)
	if err != nil {
		return err
	}
	user, err := h.users.GetByClerkID(c.UserContext(), clerkID)
	if err != nil {
		return err
	}
	feed, err := h.feed.AssembleFeed(c.UserContext(), services.FeedRequest{
		UserID:       user.ID,
		ApplyFilters: req.Filter,
		Cursor:       req.Cursor,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(ExploreResponse{
		Listings:        newListingViewDTOs(feed.Listings),
		CursorListingID: feed.Cursor,
	})
}
