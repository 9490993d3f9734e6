package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims содержимое токена доступа.
type Claims struct {
	jwt.RegisteredClaims
}

// Issue создаёт токен с sub = subject, iat = issuedAt, exp = issuedAt + TTL.
// Даты в токене хранятся с точностью до секунды, exp округляется вверх:
// токен живёт не меньше TTL.
//
// Каждый токен получает случайный jti, поэтому два токена, выпущенных в один момент,
// различаются побайтно, но оба проверяются и возвращают один subject.
func (j *MakerImpl) Issue(subject string, issuedAt time.Time) (string, error) {
	const op = "jwt.Issue"
	if subject == "" {
		return "", fmt.Errorf("%s: empty subject", op)
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(issuedAt.Add(j.tokenTTL))),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); truncated.Before(t) {
		return truncated.Add(time.Second)
	}
	return t
}

// Verify проверяет токен и возвращает subject.
//
// Подпись проверяется раньше срока действия: токен с верной подписью и прошедшим exp
// даёт ErrExpired, токен с неверной подписью даёт ErrInvalidSignature независимо от exp.
func (j *MakerImpl) Verify(tokenStr string) (string, error) {
	const op = "jwt.Verify"
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(_ *jwt.Token) (any, error) {
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, classify(err))
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%s: %w", op, ErrMalformed)
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
