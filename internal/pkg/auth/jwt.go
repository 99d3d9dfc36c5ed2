package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrWrongType     = errors.New("unexpected token type")
	ErrInvalidFormat = errors.New("invalid token format")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	TokenIssuer     string
	// Now overrides the clock, mainly for tests
	Now func() time.Time
}

// JWTService signs and verifies access and refresh tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &JWTService{
		config: config,
		now:    now,
	}
}

// Claims defines JWT token content. SessionID on an access token is the
// jti of the refresh token it was minted with, so revoking the refresh
// token also cuts off its access tokens.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is a freshly issued access and refresh token
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshID        string
	RefreshExpiresAt time.Time
}

// AccessTokenTTL returns the access token lifetime
func (s *JWTService) AccessTokenTTL() time.Duration { return s.config.AccessTokenExp }

// RefreshTokenTTL returns the refresh token lifetime
func (s *JWTService) RefreshTokenTTL() time.Duration { return s.config.RefreshTokenExp }

// GenerateTokenPair creates access and refresh token pair
func (s *JWTService) GenerateTokenPair(userID int64) (*TokenPair, error) {
	refreshToken, refreshID, refreshExp, err := s.sign(userID, TokenTypeRefresh, "", s.config.RefreshTokenExp)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	accessToken, _, accessExp, err := s.sign(userID, TokenTypeAccess, refreshID, s.config.AccessTokenExp)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshID:        refreshID,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// GenerateAccessToken mints an access token bound to an existing refresh session
func (s *JWTService) GenerateAccessToken(userID int64, sessionID string) (string, time.Time, error) {
	token, _, exp, err := s.sign(userID, TokenTypeAccess, sessionID, s.config.AccessTokenExp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return token, exp, nil
}

func (s *JWTService) sign(userID int64, tokenType, sessionID string, ttl time.Duration) (string, string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	jti := uuid.New().String()

	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

// ValidateToken verifies signature, issuer, expiry and token type
func (s *JWTService) ValidateToken(tokenString, expectedType string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidFormat
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrWrongType
	}

	return claims, nil
}

// ExpiresAtTime returns the expiry of validated claims
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidFormat
	}
	return strings.TrimSpace(token), nil
}
