package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"marketplace-booking/internal/domain/scheduling"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func TestSlotCodecRoundTripKeepsInstant(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	in := []scheduling.Slot{
		{Date: "2026-10-19", Time: "09:00", Instant: time.Date(2026, 10, 19, 9, 0, 0, 0, loc)},
		{Date: "2026-10-19", Time: "09:30", Instant: time.Date(2026, 10, 19, 9, 30, 0, 0, loc)},
	}
	raw, err := encodeSlots(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeSlots(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d slots, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Date != in[i].Date || out[i].Time != in[i].Time || !out[i].Instant.Equal(in[i].Instant) {
			t.Fatalf("slot %d changed: %+v -> %+v", i, in[i], out[i])
		}
	}
}

func TestDecodeSlotsRejectsGarbage(t *testing.T) {
	if _, err := decodeSlots([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVersionKey(t *testing.T) {
	if got := versionKey(42); got != "slots:contractor:42:version" {
		t.Fatalf("unexpected key %q", got)
	}
}

// unreachableCache has no live Redis behind it; writes fail fast and are
// only logged.
func unreachableCache() *redisSlotCache {
	log := logrus.New()
	log.SetOutput(io.Discard)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	return NewRedisSlotCache(client, log, time.Minute).(*redisSlotCache)
}

func TestFillSurvivesCancelledFirstCaller(t *testing.T) {
	c := unreachableCache()
	want := []scheduling.Slot{{Date: "2026-10-20", Time: "09:00"}}

	release := make(chan struct{})
	loadErr := make(chan error, 1)
	load := func(ctx context.Context) ([]scheduling.Slot, error) {
		<-release
		loadErr <- ctx.Err()
		return want, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.fill(ctx, "slots:service:10:v1", load)
		firstErr <- err
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: err = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-loadErr; err != nil {
		t.Fatalf("load context was cancelled with its first caller: %v", err)
	}
}

func TestFillReturnsLoadedSlots(t *testing.T) {
	c := unreachableCache()
	want := []scheduling.Slot{{Date: "2026-10-20", Time: "09:00"}}

	got, err := c.fill(context.Background(), "slots:service:10:v2", func(ctx context.Context) ([]scheduling.Slot, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(got) != 1 || got[0].Time != "09:00" {
		t.Errorf("got %+v", got)
	}

	boom := errors.New("store down")
	if _, err := c.fill(context.Background(), "slots:service:10:v3", func(ctx context.Context) ([]scheduling.Slot, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want load error", err)
	}
}
