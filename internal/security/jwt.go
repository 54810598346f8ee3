package security

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidIssuer  = errors.New("invalid issuer")
	ErrTokenExpired   = errors.New("token expired or not valid yet")
	ErrInvalidSubject = errors.New("invalid subject")
)

// TokenVerifier проверяет access-токены auth-service (SigningMethodRS256).
// Только verify-половина: подписывает токены auth-service.
type TokenVerifier struct {
	public    *rsa.PublicKey
	issuer    string
	clockSkew time.Duration
}

func NewTokenVerifier(public *rsa.PublicKey, issuer string, clockSkew time.Duration) *TokenVerifier {
	return &TokenVerifier{
		public:    public,
		issuer:    issuer,
		clockSkew: clockSkew,
	}
}

type AccessClaims struct {
	jwt.StandardClaims
}

// Valid отключает встроенную проверку временных клеймов:
// nbf/exp проверяются в ParseAndValidate с допуском clockSkew,
// иначе библиотека отбросит токен раньше, чем допуск сработает.
func (c *AccessClaims) Valid() error { return nil }

// ParseAndValidate проверяет подпись, issuer и временные клеймы
// (с допуском clockSkew) и возвращает клеймы токена.
func (v *TokenVerifier) ParseAndValidate(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok || t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, ErrInvalidToken
		}
		return v.public, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, ErrInvalidIssuer
	}

	now := time.Now()
	nbf := time.Unix(claims.NotBefore, 0).Add(-v.clockSkew)
	exp := time.Unix(claims.ExpiresAt, 0).Add(v.clockSkew)
	if now.Before(nbf) || now.After(exp) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// SubjectAsUserID парсит sub в domain.UserID.
func SubjectAsUserID(claims *AccessClaims) (domain.UserID, error) {
	if claims == nil || claims.Subject == "" {
		return 0, ErrInvalidSubject
	}
	var id int64
	if _, err := fmt.Sscan(claims.Subject, &id); err != nil {
		return 0, ErrInvalidSubject
	}

	return domain.UserID(id), nil
}

// LoadRSAPublicKeyFromPEM читает публичный ключ auth-service из PEM-файла.
func LoadRSAPublicKeyFromPEM(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, err
	}

	return pub, nil
}
