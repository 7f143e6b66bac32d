package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace-booking/internal/domain/scheduling"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// bumpVersionScript increments a contractor's calendar version and keeps the
// key alive for a day past the last write.
var bumpVersionScript = redis.NewScript(`
	local v = redis.call('INCR', KEYS[1])
	redis.call('EXPIRE', KEYS[1], ARGV[1])
	return v
`)

const (
	RedisSlotVersionKeyPrefix = "slots:contractor:"
	RedisSlotKeyPrefix        = "slots:service:"

	versionKeyTTL    = 24 * time.Hour
	redisSlotTimeout = 2 * time.Second
	slotLoadTimeout  = 10 * time.Second
)

// SlotLoader computes a service's slots from the store.
type SlotLoader func(ctx context.Context) ([]scheduling.Slot, error)

// SlotCache keeps computed slot lists per service. Entries are keyed by the
// owning contractor's calendar version, so a single Invalidate call after
// any calendar write retires every cached list of that contractor.
type SlotCache interface {
	Get(ctx context.Context, contractorID, serviceID int64, load SlotLoader) ([]scheduling.Slot, error)
	Invalidate(ctx context.Context, contractorID int64) error
}

type cachedSlot struct {
	Date    string    `json:"date"`
	Time    string    `json:"time"`
	Instant time.Time `json:"instant"`
}

type redisSlotCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	group       singleflight.Group
}

func NewRedisSlotCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) SlotCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisSlotCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// Get returns the cached list or computes it once for all concurrent callers.
// Redis failures degrade to a direct load.
func (c *redisSlotCache) Get(ctx context.Context, contractorID, serviceID int64, load SlotLoader) ([]scheduling.Slot, error) {
	rctx, cancel := context.WithTimeout(ctx, redisSlotTimeout)
	defer cancel()

	version, err := c.redisClient.Get(rctx, versionKey(contractorID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warnf("Failed to read slot version for contractor %d: %+v", contractorID, err)
		return load(ctx)
	}
	key := fmt.Sprintf("%s%d:v%d", RedisSlotKeyPrefix, serviceID, version)

	raw, err := c.redisClient.Get(rctx, key).Bytes()
	if err == nil {
		slots, decodeErr := decodeSlots(raw)
		if decodeErr == nil {
			return slots, nil
		}
		c.log.Warnf("Discarding undecodable slot cache entry %s: %+v", key, decodeErr)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warnf("Failed to read slot cache %s: %+v", key, err)
	}

	return c.fill(ctx, key, load)
}

// fill runs one load per key for all concurrent callers. The load is detached
// from the caller that started it, so a cancelled request only gives up its
// own wait.
func (c *redisSlotCache) fill(ctx context.Context, key string, load SlotLoader) ([]scheduling.Slot, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), slotLoadTimeout)
		defer cancel()

		slots, err := load(lctx)
		if err != nil {
			return nil, err
		}
		c.store(key, slots)
		return slots, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]scheduling.Slot), nil
	}
}

func (c *redisSlotCache) store(key string, slots []scheduling.Slot) {
	raw, err := encodeSlots(slots)
	if err != nil {
		c.log.Warnf("Failed to encode slots for %s: %+v", key, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisSlotTimeout)
	defer cancel()
	if err := c.redisClient.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to write slot cache %s: %+v", key, err)
		return
	}
	c.log.Debugf("Cached %d slots under %s", len(slots), key)
}

func (c *redisSlotCache) Invalidate(ctx context.Context, contractorID int64) error {
	rctx, cancel := context.WithTimeout(ctx, redisSlotTimeout)
	defer cancel()

	_, err := bumpVersionScript.Run(rctx, c.redisClient, []string{versionKey(contractorID)}, int(versionKeyTTL.Seconds())).Int64()
	if err != nil {
		c.log.Warnf("Failed to bump slot version for contractor %d: %+v", contractorID, err)
		return fmt.Errorf("bump slot version for contractor %d: %w", contractorID, err)
	}
	return nil
}

func versionKey(contractorID int64) string {
	return fmt.Sprintf("%s%d:version", RedisSlotVersionKeyPrefix, contractorID)
}

func encodeSlots(slots []scheduling.Slot) ([]byte, error) {
	out := make([]cachedSlot, len(slots))
	for i, s := range slots {
		out[i] = cachedSlot{Date: s.Date, Time: s.Time, Instant: s.Instant}
	}
	return json.Marshal(out)
}

func decodeSlots(raw []byte) ([]scheduling.Slot, error) {
	var in []cachedSlot
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	out := make([]scheduling.Slot, len(in))
	for i, s := range in {
		out[i] = scheduling.Slot{Date: s.Date, Time: s.Time, Instant: s.Instant}
	}
	return out, nil
}
