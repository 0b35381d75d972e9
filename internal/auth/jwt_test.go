package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret, 30*time.Minute)

	token, err := codec.Encode("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	codec := NewTokenCodec(testSecret, 30*time.Minute)
	other := NewTokenCodec("a-completely-different-secret-key-32ch", 30*time.Minute)

	token, err := codec.Encode("alice")
	require.NoError(t, err)

	_, err = other.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_Expired(t *testing.T) {
	expired := NewTokenCodec(testSecret, -1*time.Minute)

	token, err := expired.Encode("alice")
	require.NoError(t, err)

	codec := NewTokenCodec(testSecret, 30*time.Minute)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec(testSecret, 30*time.Minute)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := codec.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenCodec_MissingExpiryRejected(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "alice",
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := unsigned.SignedString([]byte(testSecret))
	require.NoError(t, err)

	codec := NewTokenCodec(testSecret, 30*time.Minute)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_EmptySubjectRejected(t *testing.T) {
	codec := NewTokenCodec(testSecret, 30*time.Minute)

	token, err := codec.Encode("")
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_AlgorithmConfusionRejected(t *testing.T) {
	// A token signed with "none" must not be accepted even with a valid shape.
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	codec := NewTokenCodec(testSecret, 30*time.Minute)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
