package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTManager struct {
	secretKey      string
	accessTokenTTL int
	now            func() time.Time
}

// MinSecretLength is the shortest HS256 signing key accepted, in bytes.
const MinSecretLength = 32

var ErrWeakSecret = errors.New("jwt secret is too short")

func NewJWTManager(secretKey string, tokenTTL int) (*JWTManager, error) {
	if len(secretKey) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakSecret, MinSecretLength, len(secretKey))
	}
	return &JWTManager{
		secretKey:      secretKey,
		accessTokenTTL: tokenTTL,
		now:            time.Now,
	}, nil
}

// NewAccessToken generates a new JWT access token whose subject is the user ID.
func (manager *JWTManager) NewAccessToken(userID uuid.UUID) (string, error) {
	now := manager.now()
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(manager.accessTokenTTL) * time.Minute)),
	})
	tokenString, err := claims.SignedString([]byte(manager.secretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// VerifyAccessToken verifies the access token and returns the user ID if the token is valid.
func (manager *JWTManager) VerifyAccessToken(tokenString string) (userID uuid.UUID, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(manager.secretKey), nil
	}, jwt.WithTimeFunc(manager.now))
	if err != nil {
		return uuid.Nil, err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, jwt.ErrTokenMalformed
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, jwt.ErrTokenMalformed
	}
	return id, nil
}
