package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codemarket/internal/wallet"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionExpiration applies when no expiry is configured
const DefaultSessionExpiration = time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingKey   = errors.New("session signing key is not configured")
)

// Session is a connected wallet and the bearer token representing it
type Session struct {
	Token          string    `json:"token"`
	Address        string    `json:"address"`
	DisplayAddress string    `json:"displayAddress"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// SessionService defines the interface for wallet session logic
type SessionService interface {
	Connect(ctx context.Context, requested string) (*Session, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims
type Claims struct {
	WalletAddress string `json:"wallet_address"`
	jwt.RegisteredClaims
}

type sessionService struct {
	wallet     wallet.Collaborator
	jwtSecret  string
	expiration time.Duration
	now        func() time.Time
}

// NewSessionService creates a new instance of SessionService
func NewSessionService(w wallet.Collaborator, jwtSecret string, expiration time.Duration) SessionService {
	if expiration <= 0 {
		expiration = DefaultSessionExpiration
	}
	return &sessionService{
		wallet:     w,
		jwtSecret:  jwtSecret,
		expiration: expiration,
		now:        time.Now,
	}
}

// Connect asks the wallet for an account and issues a session token for it
func (s *sessionService) Connect(ctx context.Context, requested string) (*Session, error) {
	if s.jwtSecret == "" {
		return nil, ErrMissingKey
	}

	address, err := s.wallet.ConnectWallet(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		WalletAddress: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{
		Token:          tokenString,
		Address:        address,
		DisplayAddress: wallet.FormatAddress(address),
		ExpiresAt:      expiresAt.UTC(),
	}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *sessionService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.WalletAddress == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
