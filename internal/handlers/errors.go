package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Error codes of the response envelope.
const (
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeExternalFailure  = "EXTERNAL_SERVICE_FAILURE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Status  int               `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// requestError is a malformed or invalid request body or path.
type requestError struct {
	msg     string
	details map[string]string
}

func (e *requestError) Error() string { return e.msg }

func invalidRequest(format string, args ...interface{}) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return details
}

// classify maps an error to its response. Server-side failures never expose
// the underlying cause.
func classify(err error) ErrorResponse {
	var (
		reqErr *requestError
		valErr validator.ValidationErrors
		fbErr  *fiber.Error
	)
	switch {
	case errors.As(err, &reqErr):
		return ErrorResponse{Status: fiber.StatusBadRequest, Code: CodeInvalidRequest, Message: reqErr.msg, Details: reqErr.details}
	case errors.As(err, &valErr):
		return ErrorResponse{Status: fiber.StatusBadRequest, Code: CodeInvalidRequest, Message: "Validation failed", Details: validationDetails(valErr)}
	case errors.Is(err, services.ErrValidation):
		return ErrorResponse{Status: fiber.StatusBadRequest, Code: CodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, services.ErrUnauthenticated):
		return ErrorResponse{Status: fiber.StatusUnauthorized, Code: CodeUnauthenticated, Message: "Authentication required"}
	case errors.Is(err, services.ErrNotFound):
		return ErrorResponse{Status: fiber.StatusNotFound, Code: CodeNotFound, Message: "Resource not found"}
	case errors.Is(err, services.ErrConflict):
		return ErrorResponse{Status: fiber.StatusConflict, Code: CodeConflict, Message: "The request conflicts with the current state"}
	case errors.Is(err, services.ErrExternalService):
		return ErrorResponse{Status: fiber.StatusInternalServerError, Code: CodeExternalFailure, Message: "An external service failed"}
	case errors.As(err, &fbErr):
		return fiberError(fbErr)
	default:
		return ErrorResponse{Status: fiber.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error"}
	}
}

func fiberError(e *fiber.Error) ErrorResponse {
	resp := ErrorResponse{Status: e.Code, Message: e.Message}
	switch e.Code {
	case fiber.StatusMethodNotAllowed:
		resp.Code = CodeMethodNotAllowed
	case fiber.StatusNotFound:
		resp.Code = CodeNotFound
	case fiber.StatusUnauthorized:
		resp.Code = CodeUnauthenticated
	case fiber.StatusConflict:
		resp.Code = CodeConflict
	default:
		if e.Code >= 400 && e.Code < 500 {
			resp.Code = CodeInvalidRequest
		} else {
			resp.Code = CodeInternal
			resp.Message = "Internal server error"
		}
	}
	return resp
}

// ErrorHandler writes every error returned by a handler as an ErrorResponse.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		resp := classify(err)
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", resp.Status),
			slog.String("error", err.Error()),
		}
		if resp.Status >= fiber.StatusInternalServerError {
			log.Error("request failed", attrs...)
		} else {
			log.Debug("request rejected", attrs...)
		}
		return c.Status(resp.Status).JSON(resp)
	}
}
