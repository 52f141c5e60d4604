package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nightkernel/sentinel/pkg/infra/identity"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const sessionTTL = 12 * time.Hour

// Manager issues and validates admin session tokens. Sessions are
// stateless: possession of a valid signed token is the whole session.
//
//go:generate mockery --name=Manager --dir=. --output=./mocks --filename=manager_mock.go --case=underscore --with-expecter
type (
	Manager interface {
		Login(password string) (string, error)
		CreateToken() (string, error)
		ValidateToken(tokenString string) error
	}
	manager struct {
		secretKey    []byte
		passwordHash string
	}
)

// NewManager takes the HMAC signing secret and the hex SHA-256 hash of the
// admin password. The plaintext password is never stored.
func NewManager(secretKey, passwordHash string) Manager {
	return &manager{
		secretKey:    []byte(secretKey),
		passwordHash: passwordHash,
	}
}

type Claims struct {
	jwt.RegisteredClaims
}

func (m *manager) Login(password string) (string, error) {
	if m.passwordHash == "" {
		return "", ErrInvalidCredentials
	}
	sum := sha256.Sum256([]byte(password))
	if !identity.TimingSafeEqual(hex.EncodeToString(sum[:]), m.passwordHash) {
		return "", ErrInvalidCredentials
	}
	return m.CreateToken()
}

func (m *manager) CreateToken() (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (m *manager) ValidateToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
