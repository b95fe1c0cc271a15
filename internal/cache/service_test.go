package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(Config{DefaultTTL: time.Minute, Capacity: 100})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func counter(calls *int, value any) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		*calls++
		return value, nil
	}
}

func TestServiceGetOrFetchMemoizes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	calls := 0

	for i := 0; i < 3; i++ {
		got, err := svc.GetOrFetch(ctx, "function:upper:a", 0, counter(&calls, "A"))
		if err != nil || got != "A" {
			t.Fatalf("GetOrFetch() = %v, %v", got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}

func TestServiceDoesNotCacheErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	boom := errors.New("boom")
	calls := 0

	fetch := func(context.Context) (any, error) {
		calls++
		return nil, boom
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.GetOrFetch(ctx, "function:fail:x", 0, fetch); !errors.Is(err, boom) {
			t.Fatalf("expected fetch error, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected errors to be refetched, got %d calls", calls)
	}
}

func TestServiceDeleteByPrefixAcrossBuckets(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	greet, greeting := 0, 0

	_, _ = svc.GetOrFetch(ctx, "function:greet:1", time.Hour, counter(&greet, "hi"))
	_, _ = svc.GetOrFetch(ctx, "function:greeting:1", 0, counter(&greeting, "hello"))

	if err := svc.DeleteByPrefix(ctx, "function:greet:"); err != nil {
		t.Fatalf("DeleteByPrefix() error = %v", err)
	}

	_, _ = svc.GetOrFetch(ctx, "function:greet:1", time.Hour, counter(&greet, "hi"))
	_, _ = svc.GetOrFetch(ctx, "function:greeting:1", 0, counter(&greeting, "hello"))
	if greet != 2 {
		t.Fatalf("expected greet to be refetched, got %d fetches", greet)
	}
	if greeting != 1 {
		t.Fatalf("expected greeting to stay cached, got %d fetches", greeting)
	}
}

func TestServiceDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	calls := 0

	_, _ = svc.GetOrFetch(ctx, "k", 0, counter(&calls, 1))
	if err := svc.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, _ = svc.GetOrFetch(ctx, "k", 0, counter(&calls, 1))
	if calls != 2 {
		t.Fatalf("expected refetch after delete, got %d calls", calls)
	}
}

func TestServiceRejectsNilFetch(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GetOrFetch(context.Background(), "k", 0, nil); err == nil {
		t.Fatal("expected error for nil fetch")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	svc, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc.cfg.Capacity != DefaultCapacity || svc.cfg.DefaultTTL <= 0 {
		t.Fatalf("unexpected defaults %+v", svc.cfg)
	}
}
