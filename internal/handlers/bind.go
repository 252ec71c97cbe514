package handlers

import (
	"errors"

	"sprift/internal/middleware"
	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return invalidRequest("Invalid request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			return &requestError{msg: "Validation failed", details: validationDetails(valErrs)}
		}
		return invalidRequest("Invalid request body: %v", err)
	}
	return nil
}

// bindOptional is bind for routes where the body may be omitted.
func bindOptional(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return bind(c, validate, dst)
}

// caller returns the authenticated Clerk id. A clerkId sent in the body must
// match it.
func caller(c *fiber.Ctx, bodyClerkID string) (string, error) {
	clerkID := middleware.ClerkID(c)
	if clerkID == "" {
		return "", services.ErrUnauthenticated
	}
	if bodyClerkID != "" && bodyClerkID != clerkID {
		return "", services.ErrUnauthenticated
	}
	return clerkID, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, invalidRequest("Invalid %s: %q", name, c.Params(name))
	}
	return uint(id), nil
}
