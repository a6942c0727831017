package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims is the JWT payload. ID duplicates the registered subject for clients
// that only read custom claims.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTService implements ports.TokenService with HS256-signed JWTs.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService builds a token service around a process-wide secret.
func NewJWTService(secret string, ttl time.Duration, opts ...Option) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("token service: signing secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for subjectID expiring ttl from now.
func (s *JWTService) Issue(subjectID string) (string, error) {
	now := s.now()
	claims := Claims{
		ID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject id.
func (s *JWTService) Verify(token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", classify(err)
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.ID
	}
	if subject == "" {
		return "", &domain.TokenError{Kind: domain.TokenMalformed, Err: errors.New("missing subject")}
	}
	return subject, nil
}

func classify(err error) *domain.TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &domain.TokenError{Kind: domain.TokenExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &domain.TokenError{Kind: domain.TokenSignatureInvalid, Err: err}
	default:
		return &domain.TokenError{Kind: domain.TokenMalformed, Err: err}
	}
}
