package negotiate

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		in   string
		keep int
		want string
	}{
		{"abcdefgh", 4, "****efgh"},
		{"abcd", 4, "****"},
		{"ab", 4, "**"},
		{"", 4, ""},
		{"page42", 2, "****42"},
		{"ключ-12345", 4, "******2345"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.in, tt.keep))
		})
	}
}

func TestTokenError_ShortKeyFullyMasked(t *testing.T) {
	assert.Equal(t, "****", NewTokenError("abcd", errors.New("refused")).UserKey)
}

func TestTokenError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewTokenError("secret-key-1234", cause)

	assert.Equal(t, "***********1234", err.UserKey)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to receive token")
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestAccessTokenError(t *testing.T) {
	err := NewAccessTokenError("tok-abcdef", "pg-77", nil)

	assert.Equal(t, "******cdef", err.Token)
	assert.Equal(t, "***77", err.PageID)
	assert.Nil(t, errors.Unwrap(err))
	assert.Equal(t, "failed to receive access token (token ******cdef, pageId ***77)", err.Error())
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, time.March, 5, 7, 8, 9, 45*int(time.Millisecond), time.Local), "2024_3_5_7_8_9_45"},
		{time.Date(2023, time.December, 31, 23, 59, 59, 999*int(time.Millisecond), time.Local), "2023_12_31_23_59_59_999"},
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local), "2025_1_1_0_0_0_0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.at))
		})
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Audience:  jwt.ClaimStrings{"https://hub.example/client/?hub=alerts"},
	}).SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)

	got, ok := AccessTokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(got), "expiry = %s, want %s", got, exp)

	_, ok = AccessTokenExpiry("opaque-token")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = AccessTokenExpiry(noExp)
	assert.False(t, ok)
}
