package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/pkg/tracing"

	"github.com/golang-jwt/jwt/v5"
)

type AuthService interface {
	// Login returns a signed session token for a configured credential pair.
	Login(ctx context.Context, email, password string) (string, error)
	// Validate verifies signature and expiry. Every failure is one of
	// domain.ErrMissingToken, ErrInvalidToken or ErrExpiredToken.
	Validate(ctx context.Context, token string) (*Claims, error)
	IsAuthenticated(ctx context.Context, token string) bool
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthOption func(*authService)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *authService) { s.now = now }
}

// WithMetrics counts login and session check outcomes.
func WithMetrics(m ports.Metrics) AuthOption {
	return func(s *authService) { s.metrics = m }
}

type authService struct {
	jwtSecret   []byte
	credentials domain.CredentialTable
	now         func() time.Time
	metrics     ports.Metrics
}

func NewAuthService(jwtSecret string, credentials domain.CredentialTable, opts ...AuthOption) AuthService {
	s := &authService{
		jwtSecret:   []byte(jwtSecret),
		credentials: credentials,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	_, span := tracing.TraceAuth(ctx, "login")
	defer span.End()

	cred, ok := s.credentials.Match(email, password)
	if !ok {
		s.recordLogin(false)
		span.SetAttributes(tracing.AuthResultKey.String("rejected"))
		return "", domain.ErrInvalidCredentials
	}

	issuedAt := s.now()
	claims := &Claims{
		Email: cred.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(domain.SessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		s.recordLogin(false)
		span.RecordError(err)
		return "", fmt.Errorf("sign session token: %w", err)
	}

	s.recordLogin(true)
	span.SetAttributes(tracing.AuthResultKey.String("accepted"))
	return signed, nil
}

func (s *authService) Validate(ctx context.Context, token string) (*Claims, error) {
	_, span := tracing.TraceAuth(ctx, "validate")
	defer span.End()

	claims, err := s.parse(token)
	if s.metrics != nil {
		s.metrics.RecordSessionCheck(err == nil)
	}
	if err != nil {
		span.SetAttributes(tracing.AuthResultKey.String("rejected"))
		return nil, err
	}
	span.SetAttributes(tracing.AuthResultKey.String("accepted"))
	return claims, nil
}

func (s *authService) IsAuthenticated(ctx context.Context, token string) bool {
	_, err := s.Validate(ctx, token)
	return err == nil
}

func (s *authService) parse(tokenString string) (claims *Claims, err error) {
	if tokenString == "" {
		return nil, domain.ErrMissingToken
	}

	// a panic inside the parser is reported as ErrInvalidToken
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, domain.ErrInvalidToken
		}
	}()

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.Email == "" {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

func (s *authService) recordLogin(success bool) {
	if s.metrics != nil {
		s.metrics.RecordLogin(success)
	}
}
