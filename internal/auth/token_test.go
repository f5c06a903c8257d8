package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer  "} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestTokenContext(t *testing.T) {
	ctx := WithToken(context.Background(), "tok")
	assert.Equal(t, "tok", TokenFrom(ctx))
	assert.Equal(t, "", TokenFrom(context.Background()))
}

func TestServiceContext(t *testing.T) {
	assert.False(t, IsService(context.Background()))
	assert.False(t, IsService(WithToken(context.Background(), "user-token")))
	assert.True(t, IsService(AsService(context.Background())))
}

func TestSubjectReader_Verified(t *testing.T) {
	reader := NewSubjectReader("s3cret")

	sub, err := reader.Subject(signed(t, "s3cret", "auth0|user-1"))
	require.NoError(t, err)
	assert.Equal(t, "auth0|user-1", sub)

	_, err = reader.Subject(signed(t, "other", "auth0|user-1"))
	assert.Error(t, err)
}

func TestSubjectReader_Unverified(t *testing.T) {
	reader := NewSubjectReader("")

	sub, err := reader.Subject(signed(t, "whatever", "auth0|user-2"))
	require.NoError(t, err)
	assert.Equal(t, "auth0|user-2", sub)

	_, err = reader.Subject(signed(t, "whatever", ""))
	assert.Error(t, err)

	_, err = reader.Subject("not-a-jwt")
	assert.Error(t, err)
}
