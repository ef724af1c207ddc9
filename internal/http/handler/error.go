package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"paperlib/internal/auth"
	"paperlib/internal/http/middleware"
	"paperlib/internal/proxy"
	"paperlib/internal/service"
	"paperlib/internal/summary"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
	Details   string `json:"details,omitempty"`
}

// apiError carries an explicit status and machine-readable code.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

func newAPIError(status int, code, message string) error {
	return &apiError{status: status, code: code, message: message}
}

func badRequest(code, format string, args ...any) error {
	return newAPIError(fiber.StatusBadRequest, code, fmt.Sprintf(format, args...))
}

// validationError turns validator output into a BAD_REQUEST naming the first failing field.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		f := ve[0]
		if f.Tag() == "required" {
			return badRequest("BAD_REQUEST", "%s is required", f.Field())
		}
		return badRequest("BAD_REQUEST", "invalid %s", f.Field())
	}
	return badRequest("BAD_REQUEST", "invalid request")
}

// statusFor maps domain errors onto the HTTP error taxonomy.
func statusFor(err error) (int, string) {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status, ae.code
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, codeForStatus(fe.Code)
	}

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, auth.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, proxy.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrAlreadyExists):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrFileNameRequired),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrReaderNil),
		errors.Is(err, proxy.ErrInvalidKey),
		errors.Is(err, summary.ErrNotPDF),
		errors.Is(err, summary.ErrTooLarge):
		return fiber.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, proxy.ErrProxyFailed),
		errors.Is(err, summary.ErrEmptySummary),
		errors.Is(err, summary.ErrRefused):
		return fiber.StatusBadGateway, "UPSTREAM_FAILURE"
	case errors.Is(err, service.ErrSummariesDisabled):
		return fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR"
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case fiber.StatusBadGateway:
		return "UPSTREAM_FAILURE"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	}
	if status >= fiber.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "BAD_REQUEST"
}

// publicMessage is what clients see. Server-side failures never echo internals.
func publicMessage(status int, err error) string {
	switch {
	case status == fiber.StatusBadGateway:
		return "upstream failure"
	case status == fiber.StatusServiceUnavailable:
		var ae *apiError
		if errors.As(err, &ae) {
			return ae.message
		}
		return "service unavailable"
	case status >= fiber.StatusInternalServerError:
		return "internal server error"
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
func writeError(c *fiber.Ctx, status int, code, message, details string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromCtx(c),
		Details:   details,
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Outside production, server-side failures carry the underlying error in details.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code := statusFor(err)
		var details string
		if status >= fiber.StatusInternalServerError {
			zerolog.Ctx(c.UserContext()).Error().Err(err).Str("code", code).Msg("request failed")
			if !production {
				details = err.Error()
			}
		}
		return writeError(c, status, code, publicMessage(status, err), details)
	}
}
