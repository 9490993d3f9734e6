// Package jwt выпускает и проверяет подписанные токены доступа.
//
// Токен несёт email пользователя в поле sub и момент истечения в exp.
// Сервер не хранит сессий: валидная подпись и не истёкший exp являются
// единственным доказательством личности для защищённых операций.
package jwt

import (
	"errors"
	"time"
)

// DefaultTTL время жизни токена, если в конфигурации оно не задано.
const DefaultTTL = 30 * time.Minute

// Ошибки проверки токена.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrEmptySecret      = errors.New("jwt secret key is empty")
)

// Maker описывает выпуск и проверку токенов.
type Maker interface {
	// Issue выпускает токен для subject, действующий до issuedAt + TTL.
	Issue(subject string, issuedAt time.Time) (string, error)
	// Verify проверяет подпись и срок действия, возвращает subject без изменений.
	Verify(token string) (string, error)
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени при проверке exp.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// MakerImpl реализует Maker на HS256 с общим секретом процесса.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl. Нулевой или отрицательный ttl заменяется на DefaultTTL.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) (*MakerImpl, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
