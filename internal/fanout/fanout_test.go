package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap_PreservesOrder(t *testing.T) {
	items := []int{5, 1, 3, 0, 2}

	got, err := Map(context.Background(), items, Options{}, func(ctx context.Context, i int, item int) (int, error) {
		// later items finish first
		time.Sleep(time.Duration(item) * time.Millisecond)
		return item * 10, nil
	})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	want := []int{50, 10, 30, 0, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Map()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMap_Empty(t *testing.T) {
	got, err := Map(context.Background(), []string{}, Options{}, func(ctx context.Context, i int, item string) (string, error) {
		t.Fatal("fn should not be called for empty input")
		return "", nil
	})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(Map()) = %d, want 0", len(got))
	}
}

func TestMap_FirstErrorAbortsBatch(t *testing.T) {
	boom := errors.New("boom")
	items := []int{0, 1, 2, 3}

	got, err := Map(context.Background(), items, Options{}, func(ctx context.Context, i int, item int) (int, error) {
		if item == 2 {
			return 0, boom
		}
		<-ctx.Done()
		return item, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Map() error = %v, want %v", err, boom)
	}
	if got != nil {
		t.Fatalf("Map() results = %v, want nil on failure", got)
	}
}

func TestMap_RespectsLimit(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 12)

	_, err := Map(context.Background(), items, Options{Limit: 3}, func(ctx context.Context, i int, item int) (int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return i, nil
	})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if peak > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestMap_LimiterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Map(ctx, []int{1, 2}, Options{Limiter: NewLimiter(time.Hour)}, func(ctx context.Context, i int, item int) (int, error) {
		return item, nil
	})
	if err == nil {
		t.Fatal("Map() with cancelled context and limiter should fail")
	}
}

func TestNewLimiter_ZeroIntervalDisabled(t *testing.T) {
	if NewLimiter(0) != nil {
		t.Fatal("NewLimiter(0) should return nil")
	}
}
