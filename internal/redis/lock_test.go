package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisAppointmentLocker(client, 5*time.Second), mr, client
}

func TestWithAppointmentLock_RunsFnAndReleases(t *testing.T) {
	locker, mr, _ := newTestLocker(t)
	appointmentID := uuid.New()

	ran := false
	err := locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists("lock:appointment:"+appointmentID.String()))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists("lock:appointment:"+appointmentID.String()))
}

func TestWithAppointmentLock_Contention(t *testing.T) {
	locker, _, _ := newTestLocker(t)
	appointmentID := uuid.New()

	err := locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		inner := locker.WithAppointmentLock(ctx, appointmentID, func(ctx context.Context) error {
			t.Fatal("contended fn must not run")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})

	require.NoError(t, err)
}

func TestWithAppointmentLock_DistinctAppointmentsDoNotContend(t *testing.T) {
	locker, _, _ := newTestLocker(t)

	err := locker.WithAppointmentLock(context.Background(), uuid.New(), func(ctx context.Context) error {
		return locker.WithAppointmentLock(ctx, uuid.New(), func(ctx context.Context) error {
			return nil
		})
	})

	require.NoError(t, err)
}

func TestWithAppointmentLock_StaleHolderDoesNotReleaseNewLock(t *testing.T) {
	locker, mr, client := newTestLocker(t)
	appointmentID := uuid.New()
	key := "lock:appointment:" + appointmentID.String()

	err := locker.WithAppointmentLock(context.Background(), appointmentID, func(ctx context.Context) error {
		// Simulate TTL expiry followed by another holder taking the lock.
		mr.Del(key)
		require.NoError(t, client.Set(ctx, key, "other-holder", 0).Err())
		return nil
	})
	require.NoError(t, err)

	// The original holder's deferred release must leave the new token alone.
	val, err := client.Get(context.Background(), key).Result()
	require.NoError(t, err)
	assert.Equal(t, "other-holder", val)
}
