package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, _, err := store.GetOrLoad(context.Background(), "query:top_run_scorers", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	if _, hit, err := store.GetOrLoad(context.Background(), "k", loader); err != nil || hit {
		t.Fatalf("first GetOrLoad: hit=%v err=%v", hit, err)
	}
	if v, hit, err := store.GetOrLoad(context.Background(), "k", loader); err != nil || !hit || v != 42 {
		t.Fatalf("second GetOrLoad: v=%d hit=%v err=%v", v, hit, err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Second)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(2 * time.Second)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected expired entry")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore[string](0)
	ctx := context.Background()
	store.Set(ctx, "query:a", "1")
	store.Set(ctx, "query:b", "2")
	store.Set(ctx, "other", "3")

	if removed := store.DeletePrefix(ctx, "query:"); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", store.Len())
	}
}

func TestStore_LoaderErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	boom := errors.New("boom")
	if _, _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing cached")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_GetOrLoad_InvalidatedLoadIsNotStored(t *testing.T) {
	t.Parallel()

	store := NewStore[string](0)
	ctx := context.Background()
	loading := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string, 1)
	go func() {
		v, _, err := store.GetOrLoad(ctx, "query:top_run_scorers", func(context.Context) (string, error) {
			close(loading)
			<-release
			return "before ingest", nil
		})
		if err != nil {
			done <- "error: " + err.Error()
			return
		}
		done <- v
	}()

	<-loading
	store.DeletePrefix(ctx, "query:")
	close(release)

	if got := <-done; got != "before ingest" {
		t.Fatalf("in-flight caller got %q", got)
	}
	if _, ok := store.Get(ctx, "query:top_run_scorers"); ok {
		t.Fatalf("load that raced an invalidation was cached")
	}

	v, hit, err := store.GetOrLoad(ctx, "query:top_run_scorers", func(context.Context) (string, error) {
		return "after ingest", nil
	})
	if err != nil || hit || v != "after ingest" {
		t.Fatalf("reload: v=%q hit=%v err=%v", v, hit, err)
	}
	if cached, ok := store.Get(ctx, "query:top_run_scorers"); !ok || cached != "after ingest" {
		t.Fatalf("expected fresh value cached, got %q ok=%v", cached, ok)
	}
}

func TestStore_DeleteInvalidatesInFlightLoad(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	ctx := context.Background()

	_, _, err := store.GetOrLoad(ctx, "k", func(context.Context) (int, error) {
		store.Delete(ctx, "k")
		return 1, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing cached, got %d entries", store.Len())
	}
}
