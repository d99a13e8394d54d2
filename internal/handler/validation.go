package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/internal/pricing"
)

// jsonNames maps request struct fields to the names clients send.
var jsonNames = map[string]string{
	"Code":      "code",
	"Uses":      "uses",
	"Credits":   "credits",
	"Expires":   "expires",
	"AccountID": "account_id",
	"Resource":  "resource",
	"Amount":    "amount",
}

// formatValidationError converts the first validator error into a client message.
// Fields without a known JSON name fall back to the struct field name.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field, ok := jsonNames[fe.Field()]
	if !ok {
		field = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be whitespace only"
	case "max":
		if fe.Kind() != reflect.String {
			return "invalid request: " + field + " must be at most " + fe.Param()
		}
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "len":
		return "invalid request: " + field + " must be exactly " + fe.Param() + " characters"
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "resource":
		return "invalid request: resource must be one of " + resourceList()
	default:
		return "invalid request: " + field + " is invalid"
	}
}

func resourceList() string {
	names := make([]string, len(pricing.Resources))
	for i, r := range pricing.Resources {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// parseAndValidate decodes the JSON body into req and validates it. On failure
// it writes the 400 response and returns false.
func parseAndValidate(c *fiber.Ctx, v *validator.Validate, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := v.Struct(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}
	return true, nil
}

// errorResponse writes a JSON error with the given status.
func errorResponse(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// internalError logs err with request context and hides it from the client.
func internalError(c *fiber.Ctx, err error, msg string) error {
	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(msg)
	return errorResponse(c, fiber.StatusInternalServerError, "internal server error")
}
