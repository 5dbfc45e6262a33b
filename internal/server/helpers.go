package server

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"jobboard/internal/listing"
	"jobboard/internal/middleware"
	"jobboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

var errInvalidJobID = models.NewValidationError("Invalid job ID")

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeAlreadyApplied, models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeProfileIncomplete:
		return fiber.StatusPreconditionRequired
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Server errors are logged
// with their cause, which the client never sees.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "code", models.ErrorCode(err), "error", err)
	}
	return models.RespondWithError(c, status, err)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// queryID is parseID for query-string parameters.
func (s *Server) queryID(c *fiber.Ctx, key string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(key)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a parameter name into a human-readable label.
// Examples: "id" -> "ID", "jobId" -> "job ID", "job_id" -> "job ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "_id"); ok {
		return strings.ReplaceAll(prefix, "_", " ") + " ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
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

// query adapts the request's query string to the listing parsers.
func query(c *fiber.Ctx) listing.Getter {
	return func(key string) string { return c.Query(key) }
}

// parseBody decodes the request body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// readUpload reads a multipart file field. A missing field yields "", nil,
// nil. At most limit+1 bytes are read so oversize files are still detected
// by the size checks downstream.
func readUpload(c *fiber.Ctx, field string, limit int64) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, models.NewValidationError("Could not read uploaded file")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", nil, models.NewValidationError("Could not read uploaded file")
	}
	return fh.Filename, content, nil
}

// requireUpload is readUpload for mandatory files.
func requireUpload(c *fiber.Ctx, field string, limit int64) (string, []byte, error) {
	name, content, err := readUpload(c, field, limit)
	if err != nil {
		return "", nil, err
	}
	if name == "" || len(content) == 0 {
		return "", nil, models.NewValidationError("A " + field + " file is required")
	}
	return name, content, nil
}

// truthy reads checkbox-style form and query values.
func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
