package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidToken is returned for tokens with a bad signature or
	// malformed claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned for well-formed tokens past their expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the caller identity embedded in a token.
type Identity struct {
	ID   int
	Name string
}

// Service issues and validates signed bearer tokens and hashes
// passwords. The signing secret and token lifetime come from config.
type Service struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewService(secret string, tokenTTL time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// HashPassword hashes a plaintext password with a fresh salt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether the plaintext corresponds to the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type tokenClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken produces a signed, time-limited token encoding the identity.
func (s *Service) IssueToken(identity Identity) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Name: identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(identity.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies signature and expiry and returns the embedded
// identity.
func (s *Service) ValidateToken(tokenString string) (Identity, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	id, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || id < 1 {
		return Identity{}, ErrInvalidToken
	}

	return Identity{ID: id, Name: claims.Name}, nil
}
