package scanner

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPauserWaitNotPaused(t *testing.T) {
	p := NewPauser()
	done := make(chan error)
	go func() { done <- p.Wait(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait() blocked when not paused")
	}
}

func TestPauserToggle(t *testing.T) {
	p := NewPauser()
	if p.IsPaused() {
		t.Fatal("expected running initially")
	}
	if !p.Toggle() || !p.IsPaused() {
		t.Fatal("expected paused after first Toggle")
	}
	if p.Toggle() || p.IsPaused() {
		t.Fatal("expected running after second Toggle")
	}
}

func TestPauserBlocksAndResumes(t *testing.T) {
	p := NewPauser()
	p.Toggle()

	var released atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Wait(context.Background())
			released.Add(1)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	if released.Load() != 0 {
		t.Fatal("waiters passed a closed gate")
	}

	p.Toggle()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiters did not unblock after resume")
	}
}

func TestPauserWaitHonoursContext(t *testing.T) {
	p := NewPauser()
	p.Toggle()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Wait() = %v, want deadline exceeded", err)
	}
}

func TestPauserDuration(t *testing.T) {
	p := NewPauser()
	p.Toggle()
	time.Sleep(100 * time.Millisecond)
	p.Toggle()
	time.Sleep(50 * time.Millisecond)

	total := p.PausedDuration()
	if total < 80*time.Millisecond || total > 300*time.Millisecond {
		t.Fatalf("expected ~100ms paused, got %s", total)
	}
}

func TestDispatchHoldsHostsWhilePaused(t *testing.T) {
	var calls atomic.Int32
	rt := httpsOnly(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return respond(req, http.StatusOK, "ok"), nil
	})
	cfg := testConfig(t, rt)
	cfg.Pauser = NewPauser()
	cfg.Pauser.Toggle()

	done := make(chan ResultMap)
	go func() { done <- Dispatch(context.Background(), []string{"a.test", "b.test"}, cfg) }()

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("probes ran while paused")
	}
	cfg.Pauser.Toggle()

	select {
	case results := <-done:
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch did not finish after resume")
	}
}
