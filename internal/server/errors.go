package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/render/pdf"
	"github.com/roboco-io/pubrender/internal/store"
)

// newHTTPErrorHandler maps domain errors to responses: missing records are
// 404, validation failures are 400 with a field map, rasterization timeouts
// are 504 and everything else is a logged 500.
func newHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var httpErr *echo.HTTPError
		var validationErr *model.ValidationError
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &validationErr):
			code = http.StatusBadRequest
			message = echo.Map{"error": "validation failed", "fields": validationErr.Map()}
		case errors.Is(err, store.ErrNotFound):
			code = http.StatusNotFound
			message = "not found"
		case errors.Is(err, pdf.ErrTimeout):
			code = http.StatusGatewayTimeout
			message = "pdf export timed out"
			log.Error().Err(err).Str("path", ctx.Request().URL.Path).Msg("pdf export failed")
		default:
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			log.Error().Err(err).Str("path", ctx.Request().URL.Path).Msg("request failed")
		}

		if ctx.Echo().Debug {
			message = echo.Map{"error": err.Error()}
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}
