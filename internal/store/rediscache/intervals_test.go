package rediscache

import (
	"context"
	"errors"
	"testing"
	"time"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/testutil"
)

func TestKey(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	if got, want := Key("joao", day), "barbearia:intervals:joao:2026-03-02"; got != want {
		t.Fatalf("Key = %q, want %q", got, want)
	}
}

func TestIntervalCache_RoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedisContainer(ctx, t)
	cache := NewIntervalCache(client, time.Minute)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if _, ok, err := cache.Get(ctx, "joao", day); err != nil || ok {
		t.Fatalf("Get on empty cache = ok %v, err %v, want miss", ok, err)
	}

	in := []availability.BookedInterval{
		{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 45*time.Minute), Ref: "b1"},
		{Start: day.Add(13 * time.Hour), End: day.Add(14 * time.Hour)},
	}
	if err := cache.Set(ctx, "joao", day, 0, in); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, ok, err := cache.Get(ctx, "joao", day)
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v, want hit", ok, err)
	}
	if len(got) != 2 || got[0].Ref != "b1" || !got[1].End.Equal(in[1].End) {
		t.Fatalf("Get = %+v, want %+v", got, in)
	}

	ttl, err := client.TTL(ctx, Key("joao", day)).Result()
	if err != nil {
		t.Fatalf("TTL error: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("TTL = %v, want within (0, 1m]", ttl)
	}

	if err := cache.Set(ctx, "pedro", day, 0, nil); err != nil {
		t.Fatalf("Set empty error: %v", err)
	}
	if got, ok, _ := cache.Get(ctx, "pedro", day); !ok || len(got) != 0 {
		t.Fatalf("empty list should be a hit, got ok %v len %d", ok, len(got))
	}

	if err := cache.Invalidate(ctx, "joao", day); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "joao", day); ok {
		t.Fatalf("Get after Invalidate hit")
	}
}

func TestIntervalCache_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedisContainer(ctx, t)
	cache := NewIntervalCache(client, time.Minute)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if err := client.Set(ctx, Key("joao", day), "not json", time.Minute).Err(); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, _, err := cache.Get(ctx, "joao", day); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidRecord)
	}
}

func TestIntervalCache_SetAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedisContainer(ctx, t)
	cache := NewIntervalCache(client, time.Minute)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	version, err := cache.Version(ctx, "joao", day)
	if err != nil {
		t.Fatalf("Version error: %v", err)
	}
	if err := cache.Invalidate(ctx, "joao", day); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}

	stale := []availability.BookedInterval{{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour), Ref: "b1"}}
	if err := cache.Set(ctx, "joao", day, version, stale); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "joao", day); ok {
		t.Fatalf("list read before invalidation was cached")
	}

	current, err := cache.Version(ctx, "joao", day)
	if err != nil {
		t.Fatalf("Version error: %v", err)
	}
	if current != version+1 {
		t.Fatalf("Version = %d, want %d", current, version+1)
	}
	if err := cache.Set(ctx, "joao", day, current, nil); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "joao", day); !ok {
		t.Fatalf("Set at current version missed")
	}
}
