package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// RevocationStore remembers logged-out refresh tokens until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type TokenService struct {
	secretKey       []byte
	issuer          string
	tokenDuration   time.Duration
	refreshDuration time.Duration
	userRepo        domain.UserRepository
	revoked         RevocationStore
}

func NewTokenService(secretKey string, issuer string, tokenDuration time.Duration, userRepo domain.UserRepository) *TokenService {
	return &TokenService{
		secretKey:       []byte(secretKey),
		issuer:          issuer,
		tokenDuration:   tokenDuration,
		refreshDuration: 30 * 24 * time.Hour,
		userRepo:        userRepo,
	}
}

func (s *TokenService) WithRefresh(duration time.Duration, store RevocationStore) *TokenService {
	if duration > 0 {
		s.refreshDuration = duration
	}
	s.revoked = store
	return s
}

func (s *TokenService) sign(userID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"iss": s.issuer,
		"typ": typ,
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("token service: failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (s *TokenService) GenerateToken(userID string) (string, error) {
	return s.sign(userID, tokenTypeAccess, s.tokenDuration)
}

func (s *TokenService) GenerateTokenPair(userID string) (*TokenPair, error) {
	access, err := s.GenerateToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, tokenTypeRefresh, s.refreshDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokenDuration.Seconds()),
	}, nil
}

func (s *TokenService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if iss, ok := claims["iss"].(string); !ok || iss != s.issuer {
		return nil, fmt.Errorf("invalid token issuer")
	}

	return claims, nil
}

func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}

	if typ, _ := claims["typ"].(string); typ != tokenTypeAccess {
		return "", fmt.Errorf("invalid token type")
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("invalid token subject")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("user no longer exists or db error: %w", err)
	}

	return userID, nil
}

// ValidateRefreshToken returns the subject and token id of a live refresh token.
func (s *TokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (string, string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidRefreshToken, err)
	}

	if typ, _ := claims["typ"].(string); typ != tokenTypeRefresh {
		return "", "", domain.ErrInvalidRefreshToken
	}

	userID, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if userID == "" || jti == "" {
		return "", "", domain.ErrInvalidRefreshToken
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, jti)
		if err != nil {
			return "", "", fmt.Errorf("token service: revocation lookup: %w", err)
		}
		if revoked {
			return "", "", domain.ErrInvalidRefreshToken
		}
	}

	return userID, jti, nil
}

func (s *TokenService) Revoke(ctx context.Context, jti string) error {
	if s.revoked == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, jti, s.refreshDuration)
}
