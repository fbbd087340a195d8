package jwttoken

import (
	"context"
	"errors"
	"time"

	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/middleware/auth"
	"agriqcert/pkg/requestcontext"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ActorTokenClaims represents the JWT claims carried by API bearer tokens.
type ActorTokenClaims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	Organization string `json:"org,omitempty"`
	Email        string `json:"email,omitempty"`
	AgencyID     string `json:"agency_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

var _ auth.ActorValidator = (*JWTService)(nil)

func NewJWTService(signingKey string, issuer string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// GenerateToken signs an HS256 token for the actor. A zero ttl uses the service default.
func (s *JWTService) GenerateToken(ctx context.Context, actor domain.Actor, ttl time.Duration) (string, error) {
	if actor.ID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	if _, ok := domain.ParseRole(actor.Role.String()); !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	if ttl <= 0 {
		ttl = s.tokenTTL
	}
	now := requestcontext.Now(ctx)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorTokenClaims{
		UserID:       actor.ID.String(),
		Role:         actor.Role.String(),
		Organization: actor.Organization,
		Email:        actor.Email,
		AgencyID:     actor.AgencyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// ParseToken validates signature, algorithm, expiry and issuer.
func (s *JWTService) ParseToken(tokenString string) (*ActorTokenClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "empty token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &ActorTokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token")
	}

	claims, ok := parsed.Claims.(*ActorTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token claims")
	}
	return claims, nil
}

// ValidateToken satisfies auth.ActorValidator.
func (s *JWTService) ValidateToken(tokenString string) (*auth.ActorClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.ActorClaims{
		UserID:       claims.UserID,
		Role:         claims.Role,
		Organization: claims.Organization,
		Email:        claims.Email,
		AgencyID:     claims.AgencyID,
	}, nil
}
