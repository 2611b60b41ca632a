package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

var (
	errUnauthorized    = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden   = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound    = echo.NewHTTPError(http.StatusNotFound, "not found")
	errTooManyRequests = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(deps ServerDeps) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(deps.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			code, message = recordErrorResponse(errors.Cause(err))
			if code == 0 { // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				if usr := deps.Sessions.CurrentUser(); usr != nil {
					deps.Logger.Error(msg, errors.Wrap(err, msg), *usr)
				} else {
					deps.Logger.Error(msg, errors.Wrap(err, msg))
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// recordErrorResponse maps the record error taxonomy onto HTTP responses.
// A zero code means cause is not part of the taxonomy.
func recordErrorResponse(cause error) (int, interface{}) {
	switch cause {
	case record.ErrAuthenticationFailed:
		return http.StatusBadRequest, "authentication failed"
	case record.ErrAccessDenied:
		return http.StatusForbidden, "permission denied"
	case record.ErrNotFound:
		return http.StatusNotFound, "not found"
	case record.ErrThrottled:
		return http.StatusTooManyRequests, "too many requests"
	case record.ErrBackendUnavailable:
		// retryable: the backend being unreachable is a transient state the
		// client may back off and retry
		return http.StatusServiceUnavailable, echo.Map{"error": "service temporarily unavailable", "retryable": true}
	}
	return 0, nil
}
