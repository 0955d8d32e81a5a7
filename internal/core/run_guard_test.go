package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunGuard_AcquireRelease(t *testing.T) {
	guard := NewRunGuard(50 * time.Millisecond)
	ctx := context.Background()

	if guard.Status().Active {
		t.Fatal("new guard should be idle")
	}

	if err := guard.Acquire(ctx, "run-1"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	status := guard.Status()
	if !status.Active || status.RunID != "run-1" {
		t.Errorf("Status = %+v, want active run-1", status)
	}

	if err := guard.Acquire(ctx, "run-2"); !errors.Is(err, ErrImportInProgress) {
		t.Errorf("second Acquire err = %v, want ErrImportInProgress", err)
	}

	guard.Release()
	if guard.Status().Active {
		t.Error("guard should be idle after Release")
	}

	if err := guard.Acquire(ctx, "run-3"); err != nil {
		t.Fatalf("Acquire after Release failed: %v", err)
	}
	guard.Release()
}

func TestRunGuard_WaitsForRelease(t *testing.T) {
	guard := NewRunGuard(time.Second)
	ctx := context.Background()

	if err := guard.Acquire(ctx, "first"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var secondErr error
	go func() {
		defer wg.Done()
		secondErr = guard.Acquire(ctx, "second")
	}()

	time.Sleep(20 * time.Millisecond)
	guard.Release()
	wg.Wait()

	if secondErr != nil {
		t.Fatalf("waiting Acquire failed: %v", secondErr)
	}
	if got := guard.Status().RunID; got != "second" {
		t.Errorf("RunID = %q, want %q", got, "second")
	}
	guard.Release()
}

func TestRunGuard_ContextCancelled(t *testing.T) {
	guard := NewRunGuard(time.Second)
	if err := guard.Acquire(context.Background(), "holder"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer guard.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := guard.Acquire(ctx, "late"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunGuard_WaitForDrain(t *testing.T) {
	guard := NewRunGuard(time.Second)

	if err := guard.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("idle drain failed: %v", err)
	}

	if err := guard.Acquire(context.Background(), "busy"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := guard.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		guard.Release()
	}()
	if err := guard.WaitForDrain(context.Background()); err != nil {
		t.Errorf("drain after release failed: %v", err)
	}
}
