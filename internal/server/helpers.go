package server

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"campus/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// FlexibleID accepts an id sent either as a JSON number or as a numeric string.
type FlexibleID uint

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*id = FlexibleID(v)
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it. An empty body is allowed
// when optional is set. On failure it writes a 400 and returns errResponseWritten.
func (s *Server) bind(c *fiber.Ctx, dst interface{}, optional bool) error {
	if len(c.Body()) > 0 || !optional {
		if err := c.BodyParser(dst); err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
			return errResponseWritten
		}
	}
	if err := s.validate.Struct(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, validationError(err))
		return errResponseWritten
	}
	return nil
}

func validationError(err error) *models.AppError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s exceeds maximum of %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return models.NewValidationError(strings.Join(msgs, "; "))
}

// requester returns the authenticated user id when a token was verified,
// otherwise the first non-zero id supplied by the client.
func requester(c *fiber.Ctx, candidates ...FlexibleID) uint {
	if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
		return uid
	}
	for _, id := range candidates {
		if id != 0 {
			return uint(id)
		}
	}
	return 0
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// queryID reads an optional numeric query parameter; malformed values read as 0.
func queryID(c *fiber.Ctx, key string) FlexibleID {
	v, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return FlexibleID(v)
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// success writes the {message, data} envelope.
func success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

// fail writes the error envelope with the status implied by err.
func fail(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusOf(err), err)
}
