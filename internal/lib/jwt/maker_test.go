package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func newMaker(t *testing.T, ttl time.Duration, opts ...Option) *MakerImpl {
	t.Helper()
	m, err := NewJWTMaker(testSecret, ttl, opts...)
	require.NoError(t, err)
	return m
}

func TestMaker_IssueAndVerify(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	maker := newMaker(t, 30*time.Minute, fixedClock(issuedAt))

	tests := []struct {
		name    string
		subject string
	}{
		{name: "email subject", subject: "a@x.com"},
		{name: "subject with plus", subject: "user+tag@domain.com"},
		{name: "unicode subject", subject: "пользователь@пример.рф"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.Issue(tt.subject, issuedAt)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			got, err := maker.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, got)
		})
	}
}

func TestMaker_ExpiresAtIssuedPlusTTL(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Minute
	token, err := newMaker(t, ttl).Issue("a@x.com", issuedAt)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "at issue time", now: issuedAt},
		{name: "one second before expiry", now: issuedAt.Add(ttl - time.Second)},
		{name: "exactly at expiry", now: issuedAt.Add(ttl), wantErr: ErrExpired},
		{name: "after expiry", now: issuedAt.Add(ttl + time.Hour), wantErr: ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := newMaker(t, ttl, fixedClock(tt.now)).Verify(token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, subject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", subject)
		})
	}
}

func TestMaker_FractionalIssuedAtKeepsFullTTL(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 900_000_000, time.UTC)
	ttl := 30 * time.Minute
	token, err := newMaker(t, ttl).Issue("a@x.com", issuedAt)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "at issue time", now: issuedAt},
		{name: "half a second before expiry", now: issuedAt.Add(ttl - 500*time.Millisecond)},
		{name: "next whole second after expiry", now: issuedAt.Add(ttl + 100*time.Millisecond), wantErr: ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := newMaker(t, ttl, fixedClock(tt.now)).Verify(token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", subject)
		})
	}
}

func TestMaker_SameInstantTokensBothVerify(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	maker := newMaker(t, time.Hour, fixedClock(issuedAt))

	first, err := maker.Issue("a@x.com", issuedAt)
	require.NoError(t, err)
	second, err := maker.Issue("a@x.com", issuedAt)
	require.NoError(t, err)

	for _, token := range []string{first, second} {
		subject, err := maker.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", subject)
	}
}

func TestMaker_VerifyInvalidTokens(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	maker := newMaker(t, time.Hour, fixedClock(now))

	valid, err := maker.Issue("a@x.com", now)
	require.NoError(t, err)

	other, err := NewJWTMaker("wrong_secret_key", time.Hour)
	require.NoError(t, err)
	wrongSecret, err := other.Issue("a@x.com", now)
	require.NoError(t, err)
	expiredWrongSecret, err := other.Issue("a@x.com", now.Add(-2*time.Hour))
	require.NoError(t, err)

	expired, err := maker.Issue("a@x.com", now.Add(-2*time.Hour))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tamperedSig := parts[0] + "." + parts[1] + "." + flipFirst(parts[2])

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty token", token: "", wantErr: ErrMalformed},
		{name: "garbage", token: "invalid.token.here", wantErr: ErrMalformed},
		{name: "two segments", token: parts[0] + "." + parts[1], wantErr: ErrMalformed},
		{name: "wrong secret key", token: wrongSecret, wantErr: ErrInvalidSignature},
		{name: "tampered signature", token: tamperedSig, wantErr: ErrInvalidSignature},
		{name: "expired with valid signature", token: expired, wantErr: ErrExpired},
		{name: "expired with invalid signature", token: expiredWrongSecret, wantErr: ErrInvalidSignature},
		{name: "other signing method", token: signWith(t, jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "a@x.com", "exp": now.Add(time.Hour).Unix(),
		}), wantErr: ErrInvalidSignature},
		{name: "missing subject", token: signWith(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": now.Add(time.Hour).Unix(),
		}), wantErr: ErrMalformed},
		{name: "missing expiration", token: signWith(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "a@x.com",
		}), wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := maker.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, subject)
		})
	}
}

func TestNewJWTMaker(t *testing.T) {
	_, err := NewJWTMaker("", time.Minute)
	assert.ErrorIs(t, err, ErrEmptySecret)

	m, err := NewJWTMaker("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, m.TTL())
}

func TestMaker_IssueEmptySubject(t *testing.T) {
	_, err := newMaker(t, time.Minute).Issue("", time.Now())
	assert.Error(t, err)
}

func signWith(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func flipFirst(s string) string {
	replacement := "A"
	if s[0] == 'A' {
		replacement = "B"
	}
	return replacement + s[1:]
}
