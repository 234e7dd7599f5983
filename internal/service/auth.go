package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/jwt"
)

var tracer = otel.Tracer("service")

// AuthService inspects bearer tokens presented directly to the portal, as
// API and CLI callers do instead of going through a browser session.
type AuthService struct {
	now func() time.Time
}

func NewAuthService() *AuthService {
	return &AuthService{now: time.Now}
}

type AuthResult struct {
	Token   string
	Subject string
}

// AuthBearer validates an Authorization header value. Opaque tokens pass
// through unchecked; JWTs must not be expired.
func (s *AuthService) AuthBearer(ctx context.Context, header string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthBearer")
	defer span.End()

	split := strings.Split(header, " ")
	if len(split) != 2 {
		err := fmt.Errorf("invalid authentication header")
		span.RecordError(err)
		return nil, err
	}

	authType, token := split[0], split[1]
	if !strings.EqualFold(authType, "Bearer") {
		err := fmt.Errorf("only Bearer is acceptable")
		span.RecordError(err)
		return nil, err
	}
	if token == "" {
		err := fmt.Errorf("empty bearer token")
		span.RecordError(err)
		return nil, err
	}

	result := &AuthResult{Token: token}

	_, claims, err := jwt.Decode(token)
	if err != nil {
		// not a JWT, the services decide
		return result, nil
	}
	if claims.Expired(s.now()) {
		span.RecordError(errors.Wrap(domain.ErrTokenExpired, "bearer"))
		return nil, domain.ErrTokenExpired
	}
	result.Subject = claims.Subject
	span.SetAttributes(attribute.String("Subject", claims.Subject))
	return result, nil
}
