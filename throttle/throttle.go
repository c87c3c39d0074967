package throttle

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

const keyPrefix = "rate_limit:"

// Options configures the sliding window. The login endpoint uses the
// defaults: 5 attempts per 15 minutes, then a 1 hour block.
type Options struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
}

// DefaultOptions returns the login endpoint's throttle parameters.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:   5,
		Window:        15 * time.Minute,
		BlockDuration: time.Hour,
	}
}

// Record is the per-client-identifier attempt state. Timestamps are
// unix milliseconds. A record is created lazily on first attempt and
// only the throttle mutates it.
type Record struct {
	Attempts     int   `json:"attempts"`
	WindowStart  int64 `json:"windowStart"`
	BlockedUntil int64 `json:"blockedUntil,omitempty"`
}

// Status is the verdict of a Check call.
type Status struct {
	Allowed    bool
	Blocked    bool
	Remaining  int           // attempts left in the window, when allowed
	RetryAfter time.Duration // remaining block time, when blocked
}

// Throttle tracks failed authentication attempts per client identifier
// in a sliding window, transitioning an identifier from Open to Blocked
// once the window's budget is spent. State lives in an injected Store;
// a nil store disables throttling. On store errors both Check and
// Record fail open: availability over strictness for a best-effort
// anti-brute-force control.
type Throttle struct {
	store   Store
	opts    Options
	nowTime func() time.Time
}

// Option defines a function type to modify the Throttle instance.
type Option func(*Throttle)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(t *Throttle) {
		t.nowTime = nowFunc
	}
}

// New creates a throttle over the given store. The store is an explicit
// dependency so tests can inject an in-memory fake; store may be nil,
// in which case every check allows.
func New(store Store, opts Options, options ...Option) *Throttle {
	t := &Throttle{
		store:   store,
		opts:    opts,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Check reports whether the identifier may attempt authentication.
// A block is installed the moment a check finds the window's budget
// already spent.
func (t *Throttle) Check(ctx context.Context, id string) Status {
	if t.store == nil {
		return Status{Allowed: true, Remaining: t.opts.MaxAttempts}
	}

	now := t.nowTime()
	record, err := t.load(ctx, id, now)
	if err != nil {
		log.Err(err).Str("client_id", id).Msg("throttle check failed, allowing request")
		return Status{Allowed: true, Remaining: t.opts.MaxAttempts}
	}

	if record.BlockedUntil != 0 && now.UnixMilli() < record.BlockedUntil {
		return Status{
			Blocked:    true,
			RetryAfter: time.Duration(record.BlockedUntil-now.UnixMilli()) * time.Millisecond,
		}
	}

	if record.Attempts >= t.opts.MaxAttempts {
		record.BlockedUntil = now.Add(t.opts.BlockDuration).UnixMilli()
		if err := t.persist(ctx, id, record); err != nil {
			log.Err(err).Str("client_id", id).Msg("failed to persist throttle block")
		}
		return Status{Blocked: true, RetryAfter: t.opts.BlockDuration}
	}

	return Status{Allowed: true, Remaining: t.opts.MaxAttempts - record.Attempts}
}

// Record notes the outcome of an authentication attempt. Success resets
// the identifier to a clean state; failure consumes one attempt from
// the window. Concurrent failures for one identifier can lose updates
// (plain get/put, no compare-and-swap); the resulting under-count is an
// accepted weak-consistency property, not corrected with locking.
func (t *Throttle) Record(ctx context.Context, id string, success bool) {
	if t.store == nil {
		return
	}

	now := t.nowTime()
	record, err := t.load(ctx, id, now)
	if err != nil {
		log.Err(err).Str("client_id", id).Msg("throttle record load failed, skipping")
		return
	}

	if success {
		record.Attempts = 0
		record.BlockedUntil = 0
	} else {
		record.Attempts++
	}

	if err := t.persist(ctx, id, record); err != nil {
		log.Err(err).Str("client_id", id).Msg("failed to persist throttle record")
	}
}

// Clear removes the identifier's record entirely.
func (t *Throttle) Clear(ctx context.Context, id string) {
	if t.store == nil {
		return
	}
	if err := t.store.Delete(ctx, keyPrefix+id); err != nil {
		log.Err(err).Str("client_id", id).Msg("failed to clear throttle record")
	}
}

// load fetches the identifier's record, treating an absent record or an
// elapsed window as a fresh one. A rolled-over window resets the
// attempt count but not an installed block: the block outlives the
// window that earned it.
func (t *Throttle) load(ctx context.Context, id string, now time.Time) (Record, error) {
	data, err := t.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return Record{WindowStart: now.UnixMilli()}, nil
		}
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, err
	}

	if now.UnixMilli()-record.WindowStart > t.opts.Window.Milliseconds() {
		record.Attempts = 0
		record.WindowStart = now.UnixMilli()
	}

	return record, nil
}

// persist writes the record with an expiry of window + block duration
// so stale records self-clean via the store's own TTL.
func (t *Throttle) persist(ctx context.Context, id string, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return t.store.Put(ctx, keyPrefix+id, data, t.opts.Window+t.opts.BlockDuration)
}
