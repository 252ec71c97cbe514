package handlers

import (
	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ListingHandler handles single listings and reactions to them.
type ListingHandler struct {
	users     *services.UserService
	listings  *services.ListingService
	reactions *services.ReactionService
	validate  *validator.Validate
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(users *services.UserService, listings *services.ListingService, reactions *services.ReactionService, validate *validator.Validate) *ListingHandler {
	return &ListingHandler{users: users, listings: listings, reactions: reactions, validate: validate}
}

// RegisterRoutes registers the listing routes.
func (h *ListingHandler) RegisterRoutes(router fiber.Router) {
	listingRoutes := router.Group("/listings")
	listingRoutes.Get("/:id", h.HandleGetListing)
	listingRoutes.Put("/:id", h.HandleUpdateListing)
	listingRoutes.Delete("/:id/cart", h.HandleRemoveFromCart)
	listingRoutes.Post("/:id/:reaction", h.HandleReact)
}

// HandleGetListing returns a listing with its reaction counts.
func (h *ListingHandler) HandleGetListing(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.listings.GetListing(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(newListingViewDTO(view))
}

// UpdateListingRequest carries the editable fields of a listing.
type UpdateListingRequest struct {
	SellerID    uint            `json:"sellerId" validate:"required"`
	ListingType *string         `json:"listingType" validate:"omitempty,max=32"`
	Size        *string         `json:"size" validate:"omitempty,max=16"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description" validate:"max=2000"`
	ImagePaths  []string        `json:"imagePaths" validate:"max=20,dive,max=2048"`
	Tags        []string        `json:"tags" validate:"max=32,dive,max=64"`
}

// HandleUpdateListing edits a listing of the caller.
func (h *ListingHandler) HandleUpdateListing(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateListingRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, "")
	if err != nil {
		return err
	}
	user, err := h.users.GetByClerkID(c.UserContext(), clerkID)
	if err != nil {
		return err
	}
	if user.ID != req.SellerID {
		return services.ErrUnauthenticated
	}

	view, err := h.listings.UpdateListing(c.UserContext(), id, services.UpdateListingInput{
		SellerID:     req.SellerID,
		ClothingType: req.ListingType,
		Size:         req.Size,
		Price:        req.Price,
		Description:  req.Description,
		ImagePaths:   req.ImagePaths,
		Tags:         req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(newListingViewDTO(view))
}

// ReactionRequest optionally names the caller.
type ReactionRequest struct {
	ClerkID string `json:"clerkId" validate:"omitempty,max=64"`
}

// HandleReact likes, dislikes, carts or saves a listing.
func (h *ListingHandler) HandleReact(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	kind, err := services.ParseReactionKind(c.Params("reaction"))
	if err != nil {
		return err
	}
	var req ReactionRequest
	if err := bindOptional(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, req.ClerkID)
	if err != nil {
		return err
	}
	if err := h.reactions.React(c.UserContext(), clerkID, id, kind); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": string(kind)})
}

// HandleRemoveFromCart takes a listing out of the caller's cart.
func (h *ListingHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ReactionRequest
	if err := bindOptional(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, req.ClerkID)
	if err != nil {
		return err
	}
	if err := h.reactions.RemoveFromCart(c.UserContext(), clerkID, id); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "removed"})
}
