package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/nextgen-portal/client"
	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/internal/present/rest/presenter"
	"github.com/totegamma/nextgen-portal/internal/service"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

var tracer = otel.Tracer("session")

const sessionCookieMaxAge = 7 * 24 * time.Hour

type SessionMiddleware struct {
	sessions *usecase.SessionUsecase
	auth     *service.AuthService
	secure   bool
}

func NewSessionMiddleware(
	sessions *usecase.SessionUsecase,
	auth *service.AuthService,
	secureCookie bool,
) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		auth:     auth,
		secure:   secureCookie,
	}
}

// IdentifySession resolves the caller's session from the cookie or header,
// opening a new one when needed, and binds it to the request context. A
// valid bearer header takes precedence over the session's stored token for
// the duration of the request. A bearer that is malformed or expired is
// answered with 401 and never falls back to the session's token.
func (m *SessionMiddleware) IdentifySession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Session.Middleware.IdentifySession")
		defer span.End()

		requested := c.Request().Header.Get(domain.SessionHeader)
		if requested == "" {
			if cookie, err := c.Cookie(domain.SessionCookie); err == nil {
				requested = cookie.Value
			}
		}

		session, err := m.sessions.Open(ctx, requested)
		if err != nil {
			span.RecordError(errors.Wrap(err, "open session"))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
		}
		span.SetAttributes(attribute.String("SessionID", session.ID))

		if session.ID != requested {
			c.SetCookie(&http.Cookie{
				Name:     domain.SessionCookie,
				Value:    session.ID,
				Path:     "/",
				MaxAge:   int(sessionCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Response().Header().Set(domain.SessionHeader, session.ID)

		ctx = context.WithValue(ctx, domain.SessionIDCtxKey, session.ID)

		var store client.TokenStore = m.sessions.TokenStore(session.ID)
		if header := c.Request().Header.Get("Authorization"); header != "" && m.auth != nil {
			result, err := m.auth.AuthBearer(ctx, header)
			if err != nil {
				span.RecordError(errors.Wrap(err, "bearer rejected"))
				if errors.Is(err, domain.ErrTokenExpired) {
					return presenter.Unauthorized(c, "bearer token expired")
				}
				return presenter.Unauthorized(c, "invalid bearer token")
			}
			store = client.NewMemoryTokenStore(result.Token)
		}
		ctx = client.ContextWithTokenStore(ctx, store)

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// SessionID returns the id bound by IdentifySession.
func SessionID(c echo.Context) string {
	id, _ := c.Request().Context().Value(domain.SessionIDCtxKey).(string)
	return id
}
