package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/smmboost/panel/internal/app/config"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
)

// TokenService verifies bearer tokens minted by the external identity
// provider. The provider is a black box: the gateway only extracts the
// stable principal, role comes from the backend's authorization probe.
type TokenService interface {
	GetPrincipal(tokenString string) (models.Principal, error)
	GenerateToken(principal models.Principal) (string, error)
}

type Claims struct {
	jwt.RegisteredClaims
	Principal string
}

type TokenServiceImpl struct {
	secretKey     string
	tokenLifetime time.Duration
}

func NewTokenService(cfg config.AppConfig) *TokenServiceImpl {
	return &TokenServiceImpl{
		secretKey:     cfg.TokenSecretKey,
		tokenLifetime: 24 * time.Hour,
	}
}

func (ts TokenServiceImpl) GetPrincipal(tokenString string) (models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(ts.secretKey), nil
		})
	if err != nil {
		return "", appErrors.Unauthenticated(err, "Invalid token")
	}

	if !token.Valid {
		return "", appErrors.Unauthenticated(errors.New("token error"), "Token is not valid")
	}

	if claims.Principal == "" {
		return "", appErrors.Unauthenticated(errors.New("token error"), "Token carries no principal")
	}

	return models.Principal(claims.Principal), nil
}

// GenerateToken exists for local development and tests; in production the
// identity provider mints the tokens.
func (ts TokenServiceImpl) GenerateToken(principal models.Principal) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "smmpanel",
			Subject:   "auth token",
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Principal: principal.String(),
	})

	tokenString, err := token.SignedString([]byte(ts.secretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}
