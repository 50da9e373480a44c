package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/profilegateway/backend/internal/infrastructure/config"
)

// TokenType distinguishes tokens presented by API callers from tokens the
// gateway sends to the modern backend.
type TokenType string

const (
	TokenTypeCaller  TokenType = "caller"
	TokenTypeService TokenType = "service"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrMissingClientID  = errors.New("missing client_id in claims")
	ErrNoSecret         = errors.New("signing secret is not configured")
)

// Claims are the JWT claims used by the gateway.
type Claims struct {
	jwt.RegisteredClaims
	ClientID  string    `json:"client_id"`
	TokenType TokenType `json:"token_type"`
}

// JWTService signs and validates HS256 tokens.
type JWTService struct {
	callerSecret  []byte
	serviceSecret []byte
	issuer        string
	serviceTTL    time.Duration
	now           func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.AuthConfig) *JWTService {
	return &JWTService{
		callerSecret:  []byte(cfg.Secret),
		serviceSecret: []byte(cfg.ServiceSecret),
		issuer:        cfg.Issuer,
		serviceTTL:    cfg.ServiceTTL,
		now:           time.Now,
	}
}

// IssueCallerToken mints a token that lets clientID call the public API.
func (s *JWTService) IssueCallerToken(clientID string, ttl time.Duration) (string, error) {
	if clientID == "" {
		return "", ErrMissingClientID
	}
	return s.sign(s.callerSecret, clientID, s.issuer, ttl, TokenTypeCaller)
}

// ServiceToken mints a short-lived token for an outbound call to audience.
func (s *JWTService) ServiceToken(audience string) (string, error) {
	return s.sign(s.serviceSecret, s.issuer, audience, s.serviceTTL, TokenTypeService)
}

func (s *JWTService) sign(secret []byte, subject, audience string, ttl time.Duration, typ TokenType) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ClientID:  subject,
		TokenType: typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateCallerToken checks signature, issuer, lifetime and type of a
// caller token.
func (s *JWTService) ValidateCallerToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.callerSecret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeCaller {
		return nil, ErrInvalidTokenType
	}
	if claims.ClientID == "" {
		return nil, ErrMissingClientID
	}
	return claims, nil
}
