package services

import (
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"webanalytics/model"
)

// TokenService mints and hashes the dashboard's JWTs. Secrets come from
// config at construction; nothing reads the environment at call time.
type TokenService struct {
	secret        []byte
	refreshSecret []byte
}

func NewTokenService(secret, refreshSecret string) *TokenService {
	return &TokenService{secret: []byte(secret), refreshSecret: []byte(refreshSecret)}
}

func (s *TokenService) CreateAccessToken(userID, email, role string) (string, error) {
	claims := &model.AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "webanalytics",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(60 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) CreateRefreshToken(userID string) (string, error) {
	claims := &model.AccessRefresh{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "webanalytics",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)), // Longer-lived token (7 days)
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

// HashRefreshToken hashes a refresh token for storage. SHA-256 first so the
// input to bcrypt has a fixed 32-byte length.
func (s *TokenService) HashRefreshToken(token string) (string, error) {
	hash := sha256.Sum256([]byte(token))

	hashedToken, err := bcrypt.GenerateFromPassword(hash[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedToken), nil
}

// CompareRefreshToken checks a presented refresh token against its stored
// bcrypt hash.
func (s *TokenService) CompareRefreshToken(hashed, token string) error {
	hash := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(hashed), hash[:])
}
