package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/homebudget-guard/internal/api/dto"
	"github.com/eshaffer321/homebudget-guard/internal/api/middleware"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/ingest"
)

// Base provides shared functionality for all handlers.
type Base struct {
	logger *slog.Logger
}

// NewBase creates a new base handler.
func NewBase(logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// WriteError writes an error response with the given status code and stops
// the handler chain.
func (b *Base) WriteError(c *gin.Context, status int, err dto.APIError) {
	c.AbortWithStatusJSON(status, err)
}

// HandleError maps a service error onto a status code. resource names the
// record in not-found messages.
func (b *Base) HandleError(c *gin.Context, err error, resource string) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		b.WriteError(c, http.StatusBadRequest, dto.ValidationError(ve.Error()))
	case errors.Is(err, ingest.ErrEmptyStatement):
		b.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, model.ErrNotFound):
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError(resource))
	case errors.Is(err, model.ErrConflict):
		b.WriteError(c, http.StatusConflict, dto.ConflictError(err.Error()))
	default:
		_ = c.Error(err)
		b.logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", middleware.GetRequestID(c),
			"error", err,
		)
		b.WriteError(c, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(c *gin.Context, name string, defaultVal bool) bool {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// parseFloatParam parses an optional float query parameter. ok is false when
// the parameter is absent.
func parseFloatParam(c *gin.Context, name string) (v float64, ok bool, err error) {
	val := c.Query(name)
	if val == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, model.Invalid(name, "must be a number")
	}
	return v, true, nil
}

// parseID reads a positive integer path parameter, writing a 400 if it is not one.
func (b *Base) parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		b.WriteError(c, http.StatusBadRequest, dto.BadRequestError(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// pageParams reads limit and offset (skip is accepted as an alias).
func pageParams(c *gin.Context) (limit, offset int) {
	limit = ParseIntParam(c, "limit", dto.DefaultListLimit)
	if limit <= 0 || limit > dto.MaxListLimit {
		limit = dto.DefaultListLimit
	}
	offset = ParseIntParam(c, "offset", ParseIntParam(c, "skip", 0))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func owner(c *gin.Context) int64 {
	return middleware.OwnerID(c)
}
