package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/api/metrics"
	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

// IdentityKey is the echo context key holding the authenticated domain.Identity.
const IdentityKey = "identity"

// Auth verifies the bearer token, resolves the account behind it and attaches
// its identity to the context. Every rejection is the same 401 so callers
// cannot tell which precondition failed.
func Auth(tokens ports.TokenService, identities ports.IdentityResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if reason != "" {
				return reject(c, log, reason, nil)
			}

			subject, err := tokens.Verify(token)
			if err != nil {
				reason := domain.TokenMalformed.String()
				var te *domain.TokenError
				if errors.As(err, &te) {
					reason = te.Kind.String()
				}
				return reject(c, log, reason, err)
			}

			identity, err := identities.Resolve(c.Request().Context(), subject)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return reject(c, log, "unknown_account", err)
				}
				return fmt.Errorf("auth: resolve identity: %w", err)
			}

			c.Set(IdentityKey, *identity)
			return next(c)
		}
	}
}

// bearerToken returns the token or the rejection reason.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "missing_header"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "bad_scheme"
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", "bad_scheme"
	}
	return token, ""
}

func reject(c echo.Context, log zerolog.Logger, reason string, cause error) error {
	metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Err(cause).
		Str("reason", reason).
		Str("path", c.Path()).
		Msg("request rejected by auth gate")

	he := echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthorized.Error())
	if cause != nil {
		he = he.SetInternal(cause)
	}
	return he
}
