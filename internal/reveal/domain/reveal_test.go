package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/sealbox/internal/errors"
)

func TestToken_State(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := &Token{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, token.IsConsumed())
	assert.False(t, token.IsExpired(now))
	assert.True(t, token.IsExpired(now.Add(time.Minute)))

	consumedAt := now
	token.ConsumedAt = &consumedAt
	assert.True(t, token.IsConsumed())
}

func TestAttemptCounter_IsLocked(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(15 * time.Minute)
	past := now.Add(-time.Second)

	assert.False(t, (&AttemptCounter{FailedCount: 2}).IsLocked(now))
	assert.True(t, (&AttemptCounter{FailedCount: 3, LockedUntil: &future}).IsLocked(now))
	assert.False(t, (&AttemptCounter{FailedCount: 3, LockedUntil: &past}).IsLocked(now))
}

func TestAttemptCounter_Reserve(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	counter := &AttemptCounter{}

	require.True(t, counter.Reserve(now, 3, time.Minute))
	require.True(t, counter.Reserve(now, 3, time.Minute))
	require.True(t, counter.Reserve(now, 3, time.Minute))
	assert.False(t, counter.Reserve(now, 3, time.Minute), "running checks count against the threshold")
	assert.Equal(t, 3, counter.InFlight)

	counter.Release()
	assert.True(t, counter.Reserve(now, 3, time.Minute))

	assert.True(t, counter.Reserve(now.Add(time.Minute), 3, time.Minute), "stale reservations are dropped")
	assert.Equal(t, 1, counter.InFlight)
}

func TestAttemptCounter_FailLocksAtThreshold(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lockedUntil := now.Add(15 * time.Minute)
	counter := &AttemptCounter{}

	for i := range 3 {
		require.True(t, counter.Reserve(now, 3, time.Minute), "reservation %d", i)
		counter.Fail(now, 3, lockedUntil)
	}
	assert.Equal(t, 3, counter.FailedCount)
	assert.Equal(t, 0, counter.InFlight)
	assert.True(t, counter.IsLocked(now))
	assert.False(t, counter.Reserve(now, 3, time.Minute))

	require.True(t, counter.Reserve(lockedUntil, 3, time.Minute), "elapsed lock starts a new count")
	assert.Equal(t, 0, counter.FailedCount)
	counter.Fail(lockedUntil, 3, lockedUntil.Add(15*time.Minute))
	assert.Equal(t, 1, counter.FailedCount)
	assert.False(t, counter.IsLocked(lockedUntil))
}

func TestAttemptCounter_Succeed(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	failedAt := now.Add(-time.Minute)

	counter := &AttemptCounter{FailedCount: 2, LastFailedAt: &failedAt, InFlight: 1}
	assert.True(t, counter.Succeed(now))
	assert.Equal(t, 0, counter.FailedCount)
	assert.Nil(t, counter.LastFailedAt)
	assert.Equal(t, 0, counter.InFlight)

	lockedUntil := now.Add(time.Minute)
	locked := &AttemptCounter{FailedCount: 3, LockedUntil: &lockedUntil, InFlight: 1}
	assert.False(t, locked.Succeed(now), "a lock set during the check survives")
	assert.Equal(t, 3, locked.FailedCount)
	assert.Equal(t, 0, locked.InFlight)

	locked.Release()
	assert.Equal(t, 0, locked.InFlight)
}

func TestPayload_CloneAndZero(t *testing.T) {
	payload := &Payload{Mode: ModeServer, Plaintext: []byte("123-45-6789")}

	clone := payload.Clone()
	payload.Zero()

	assert.Equal(t, make([]byte, 11), payload.Plaintext)
	assert.Equal(t, []byte("123-45-6789"), clone.Plaintext)
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, ModeServer.Valid())
	assert.True(t, ModeClient.Valid())
	assert.False(t, Mode("browser").Valid())
}

func TestError(t *testing.T) {
	tests := []struct {
		code     Code
		sentinel error
	}{
		{CodeInvalidCredential, errors.ErrForbidden},
		{CodeTampered, errors.ErrForbidden},
		{CodeLocked, errors.ErrLocked},
		{CodeExpired, errors.ErrGone},
		{CodeConsumed, errors.ErrGone},
		{CodeNotFound, errors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewError(tt.code, "some reason"))

			assert.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, err, NewError(tt.code, ""))
			assert.Equal(t, tt.code, CodeOf(err))

			var revealErr *Error
			require.ErrorAs(t, err, &revealErr)
			assert.Equal(t, string(tt.code), revealErr.ErrorCode())
			assert.Equal(t, "the record could not be revealed", revealErr.PublicMessage())
			assert.NotContains(t, revealErr.PublicMessage(), "some reason")
		})
	}

	assert.NotErrorIs(t, NewError(CodeLocked, ""), NewError(CodeExpired, ""))
	assert.Equal(t, Code(""), CodeOf(errors.ErrNotFound))
}
