package security

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService authenticates the single operator account and issues its tokens.
type AuthService struct {
	JWTSecret            string
	OperatorUsername     string
	OperatorPasswordHash string
	TokenExpiry          time.Duration
}

func NewAuthService(secret, username, passwordHash string, expiry time.Duration) *AuthService {
	return &AuthService{
		JWTSecret:            secret,
		OperatorUsername:     username,
		OperatorPasswordHash: passwordHash,
		TokenExpiry:          expiry,
	}
}

func (a *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *AuthService) CompareHashAndPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Authenticate checks the operator credentials and returns a signed token.
func (a *AuthService) Authenticate(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.OperatorUsername)) == 1
	// bcrypt runs even on a wrong username so both failures take the same time.
	passErr := a.CompareHashAndPassword(a.OperatorPasswordHash, password)
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}
	return a.GenerateToken(username)
}

func (a *AuthService) GenerateToken(subject string) (string, error) {
	if a.TokenExpiry <= 0 {
		return "", errors.New("token expiry must be positive")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(a.TokenExpiry).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(string)
		if !ok {
			return "", errors.New("invalid token: 'sub' claim missing or not a string")
		}
		return sub, nil
	}
	return "", errors.New("invalid token")
}
