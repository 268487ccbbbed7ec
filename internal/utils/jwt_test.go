package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseJWT(t *testing.T) {
	uid := uuid.NewString()
	token, err := SignJWT("s3cret", uid, "freelancer", 60)
	require.NoError(t, err)

	claims, err := ParseJWT("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UserID)
	assert.Equal(t, "freelancer", claims.Role)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := SignJWT("s3cret", uuid.NewString(), "client", 60)
	require.NoError(t, err)

	_, err = ParseJWT("other", token)
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	token, err := SignJWT("s3cret", uuid.NewString(), "client", -1)
	require.NoError(t, err)

	_, err = ParseJWT("s3cret", token)
	assert.Error(t, err)
}

func TestParseJWTGarbage(t *testing.T) {
	_, err := ParseJWT("s3cret", "not.a.token")
	assert.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}
