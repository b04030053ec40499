// Package apierr converts service errors into huma status errors.
package apierr

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/siteadmin"
)

// From maps err onto an HTTP status. Unrecognised errors are logged with op
// and answered with a generic 500 that carries no internal detail.
func From(op string, err error) error {
	if err == nil {
		return nil
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return huma.Error400BadRequest("validation failed", &huma.ErrorDetail{
			Location: "body." + ve.Field,
			Message:  ve.Message,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return huma.Error400BadRequest("invalid input")
	case errors.Is(err, domain.ErrWebsiteNotFound):
		return huma.Error404NotFound("website not found")
	case errors.Is(err, domain.ErrPageNotFound):
		return huma.Error404NotFound("page not found")
	case errors.Is(err, domain.ErrSectionNotFound):
		return huma.Error404NotFound("section not found")
	case errors.Is(err, siteadmin.ErrNotConfigured):
		return huma.Error404NotFound("site admin not configured")
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("not found")
	case errors.Is(err, domain.ErrConcurrencyConflict):
		// Internal retries ran out; the same request is expected to succeed
		// once the competing write commits.
		return huma.ErrorWithHeaders(
			huma.Error409Conflict("concurrent update, retry the request"),
			http.Header{"Retry-After": []string{"1"}},
		)
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("resource already exists or is in use")
	case errors.Is(err, domain.ErrInactiveWebsite):
		return huma.Error503ServiceUnavailable("website is offline")
	case errors.Is(err, domain.ErrAdminDisabled):
		return huma.Error403Forbidden("site admin is disabled for this website")
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, siteadmin.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized("invalid or expired token")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("insufficient permissions")
	}

	log.Error().Err(err).Str("op", op).Msg("request failed")
	return huma.Error500InternalServerError("internal error")
}
