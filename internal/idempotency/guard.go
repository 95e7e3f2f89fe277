package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

const keyPrefix = "idempotency:"

// ErrStoreUnavailable means the marker store could not be reached. Admission
// must fail closed on it: treating an unreachable store as "not a duplicate"
// risks double delivery.
var ErrStoreUnavailable = errors.New("idempotency store unavailable")

// store is the subset of the redis client the guard needs.
type store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Wired with the raw go-redis client, not the wbf wrapper: the wrapper
// shadows Get with a (string, error) variant that does not satisfy store.
var _ store = (*redis.Client)(nil)

// Claim is the outcome of a claim attempt. When Winner is false, Existing
// holds the notification id the key already maps to.
type Claim struct {
	Winner   bool
	Existing uuid.UUID
}

// Guard decides NEW vs DUPLICATE for an idempotency key by atomically
// mapping the key to a notification id with a TTL equal to the idempotency
// window. Mutual exclusion between racing admissions is delegated entirely
// to the atomicity of SETNX.
type Guard struct {
	store  store
	window time.Duration
}

func NewGuard(store store, window time.Duration) *Guard {
	return &Guard{store: store, window: window}
}

// Claim atomically maps key to id unless the key is already claimed. Exactly
// one of N concurrent calls with the same key wins. The marker expires on its
// own after the idempotency window; a claim after expiry wins again.
func (g *Guard) Claim(ctx context.Context, key string, id uuid.UUID) (Claim, error) {
	markerKey := keyPrefix + key

	// Two attempts cover the marker expiring between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := g.store.SetNX(ctx, markerKey, id.String(), g.window).Result()
		if err != nil {
			return Claim{}, fmt.Errorf("claim %q: %w", key, ErrStoreUnavailable)
		}

		if ok {
			return Claim{Winner: true}, nil
		}

		existing, err := g.store.Get(ctx, markerKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return Claim{}, fmt.Errorf("read claim %q: %w", key, ErrStoreUnavailable)
		}

		existingID, err := uuid.Parse(existing)
		if err != nil {
			return Claim{}, fmt.Errorf("claim %q maps to malformed id %q: %w", key, existing, err)
		}

		return Claim{Existing: existingID}, nil
	}

	return Claim{}, fmt.Errorf("claim %q: %w", key, ErrStoreUnavailable)
}

// Release removes the marker for key if it still belongs to id. It is a
// best-effort rollback used when record creation fails after a won claim;
// the marker self-expires anyway, so failures are logged and swallowed.
func (g *Guard) Release(ctx context.Context, key string, id uuid.UUID) error {
	markerKey := keyPrefix + key

	existing, err := g.store.Get(ctx, markerKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("release %q: %w", key, ErrStoreUnavailable)
	}

	if existing != id.String() {
		zlog.Logger.Warn().Str("key", key).Str("id", id.String()).Msg("release skipped: marker owned by another notification")
		return nil
	}

	if err := g.store.Del(ctx, markerKey).Err(); err != nil {
		return fmt.Errorf("release %q: %w", key, ErrStoreUnavailable)
	}

	return nil
}
