package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewSessionStore(client)
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "jti-1")
	assert.NoError(t, err)
	assert.False(t, revoked)

	assert.NoError(t, s.Revoke(ctx, "jti-1", time.Hour))
	assert.True(t, mr.Exists("session:revoked:jti-1"))

	revoked, err = s.IsRevoked(ctx, "jti-1")
	assert.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)

	revoked, err = s.IsRevoked(ctx, "jti-1")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestSessionStoreExpiredToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewSessionStore(client)
	assert.NoError(t, s.Revoke(context.Background(), "jti-2", 0))
	assert.False(t, mr.Exists("session:revoked:jti-2"))
}

func TestSessionStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	_, err := NewSessionStore(client).IsRevoked(context.Background(), "jti-3")
	assert.Error(t, err)
}
