package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Access tokens are short-lived; refresh tokens are
// used solely to mint new access tokens.
const (
	AccessTTL  = 2 * time.Hour
	RefreshTTL = 24 * time.Hour
)

// ErrInvalidToken is returned when a token is malformed, carries a bad
// signature, has expired, or was signed under the wrong secret class.
var ErrInvalidToken = errors.New("invalid token")

// Pair is an access/refresh token pair issued at registration and login.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service issues and verifies signed, time-bound tokens. Access and
// refresh tokens are signed with distinct secrets so one class never
// verifies as the other.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewService constructs a token service. Both secrets must be
// non-empty and must differ, otherwise the two token classes would be
// interchangeable.
func NewService(accessSecret, refreshSecret string) (*Service, error) {
	if strings.TrimSpace(accessSecret) == "" || strings.TrimSpace(refreshSecret) == "" {
		return nil, errors.New("token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}, nil
}

// IssueAccess signs a new access token for the user.
func (s *Service) IssueAccess(userID int) (string, error) {
	return sign(userID, s.accessSecret, AccessTTL)
}

// IssueRefresh signs a new refresh token for the user.
func (s *Service) IssueRefresh(userID int) (string, error) {
	return sign(userID, s.refreshSecret, RefreshTTL)
}

// IssuePair issues an access/refresh pair for the user.
func (s *Service) IssuePair(userID int) (Pair, error) {
	access, err := s.IssueAccess(userID)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.IssueRefresh(userID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns the embedded user ID.
func (s *Service) VerifyAccess(tokenString string) (int, error) {
	return verify(tokenString, s.accessSecret)
}

// VerifyRefresh validates a refresh token and returns the embedded user ID.
func (s *Service) VerifyRefresh(tokenString string) (int, error) {
	return verify(tokenString, s.refreshSecret)
}

func sign(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verify(tokenString string, secret []byte) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
