package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, address_not_recognized, upstream_unavailable, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// pipelineStatus maps an error kind to its HTTP status and code.
func pipelineStatus(kind domain.ErrorKind) (int, string) {
	switch kind {
	case domain.ErrorKindResolution:
		return 422, "address_not_recognized"
	case domain.ErrorKindRetrieval:
		return 502, "upstream_unavailable"
	default:
		return 500, "internal_error"
	}
}

// errPipeline classifies a map pipeline failure and renders the user message.
func errPipeline(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrEmptyAddress) {
		return errBadRequest(c, "address is required")
	}
	kind := domain.Classify(err)
	status, code := pipelineStatus(kind)
	LoggerFromCtx(c.UserContext()).Warn("map pipeline failed", "kind", kind, "error", err)
	return newError(c, status, code, kind.UserMessage())
}
