package throttle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudclip/auth-service/throttle"
	"github.com/cloudclip/auth-service/throttle/storefakes"
)

const testClientID = "203.0.113.7"

type testFixture struct {
	store    *storefakes.FakeStore
	throttle *throttle.Throttle
	current  time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		store:   storefakes.NewFakeStore(),
		current: time.Now(),
	}
	nowFunc := func() time.Time { return f.current }
	f.store.NowTime = nowFunc
	f.throttle = throttle.New(f.store, throttle.DefaultOptions(), throttle.WithNowTime(nowFunc))
	return f
}

func (f *testFixture) advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func TestCheckFreshIdentifier(t *testing.T) {
	f := setupTestFixture(t)

	status := f.throttle.Check(context.Background(), testClientID)
	require.True(t, status.Allowed)
	require.Equal(t, 5, status.Remaining)
}

func TestLockoutAfterMaxAttempts(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.throttle.Record(ctx, testClientID, false)
	}

	status := f.throttle.Check(ctx, testClientID)
	require.False(t, status.Allowed)
	require.True(t, status.Blocked)
	require.InDelta(t, time.Hour.Seconds(), status.RetryAfter.Seconds(), 1)

	// The block holds on subsequent checks, counting down.
	f.advance(30 * time.Minute)
	status = f.throttle.Check(ctx, testClientID)
	require.True(t, status.Blocked)
	require.InDelta(t, (30 * time.Minute).Seconds(), status.RetryAfter.Seconds(), 1)
}

func TestSuccessResetsState(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.throttle.Record(ctx, testClientID, false)
	}
	require.True(t, f.throttle.Check(ctx, testClientID).Blocked)

	f.throttle.Record(ctx, testClientID, true)

	status := f.throttle.Check(ctx, testClientID)
	require.True(t, status.Allowed)
	require.Equal(t, 5, status.Remaining)
}

func TestWindowExpiryStartsFresh(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		f.throttle.Record(ctx, testClientID, false)
	}
	require.Equal(t, 1, f.throttle.Check(ctx, testClientID).Remaining)

	f.advance(16 * time.Minute)

	status := f.throttle.Check(ctx, testClientID)
	require.True(t, status.Allowed)
	require.Equal(t, 5, status.Remaining)
}

func TestFailuresDecrementRemaining(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.throttle.Record(ctx, testClientID, false)
	require.Equal(t, 4, f.throttle.Check(ctx, testClientID).Remaining)

	f.throttle.Record(ctx, testClientID, false)
	require.Equal(t, 3, f.throttle.Check(ctx, testClientID).Remaining)
}

func TestRecordPersistsWithSelfCleaningTTL(t *testing.T) {
	f := setupTestFixture(t)

	f.throttle.Record(context.Background(), testClientID, false)

	ttl, ok := f.store.TTL("rate_limit:" + testClientID)
	require.True(t, ok)
	require.Equal(t, 15*time.Minute+time.Hour, ttl)
}

func TestStoreFailureFailsOpen(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.store.FailWith = errors.New("connection refused")

	status := f.throttle.Check(ctx, testClientID)
	require.True(t, status.Allowed)
	require.Equal(t, 5, status.Remaining)

	// Record must be a no-op rather than an error.
	f.throttle.Record(ctx, testClientID, false)
	f.store.FailWith = nil
	require.Equal(t, 5, f.throttle.Check(ctx, testClientID).Remaining)
}

func TestNilStoreDisablesThrottling(t *testing.T) {
	tr := throttle.New(nil, throttle.DefaultOptions())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		tr.Record(ctx, testClientID, false)
	}

	status := tr.Check(ctx, testClientID)
	require.True(t, status.Allowed)
	require.Equal(t, 5, status.Remaining)
}

func TestClearRemovesRecord(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.throttle.Record(ctx, testClientID, false)
	require.Equal(t, 1, f.store.Len())

	f.throttle.Clear(ctx, testClientID)
	require.Equal(t, 0, f.store.Len())
}
