package runner

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"
	"time"

	"pdp-recon/internal/model"
)

func TestBarrierCountsEachWorkerOnce(t *testing.T) {
	dir := t.TempDir()
	b := NewBarrier(dir, model.SectionMarkdowns, model.RegionUSA, 2, time.Second)
	other := NewBarrier(dir, model.SectionMarkdowns, model.RegionCANFR, 2, time.Second)

	if err := b.MarkDone("0", &Summary{Checked: 3}); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if err := b.MarkDone("0", &Summary{Checked: 4}); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if err := other.MarkDone("1", nil); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	done, err := b.Done()
	if err != nil {
		t.Fatalf("Done failed: %v", err)
	}
	if !slices.Equal(done, []string{"0"}) {
		t.Errorf("Done() = %v, expected [0]", done)
	}
	if _, err := os.Stat(b.Path("0")); err != nil {
		t.Errorf("marker missing: %v", err)
	}
}

func TestBarrierWaitReleasesWhenAllDone(t *testing.T) {
	b := NewBarrier(t.TempDir(), model.SectionNewness, model.RegionCANEN, 2, 5*time.Second)
	if err := b.MarkDone("0", nil); err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		b.MarkDone("1", nil)
	}()

	start := time.Now()
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Error("Wait should return soon after the last marker")
	}
}

func TestBarrierWaitTimesOut(t *testing.T) {
	b := NewBarrier(t.TempDir(), model.SectionNewness, model.RegionUSA, 3, 200*time.Millisecond)
	b.MarkDone("0", nil)

	err := b.Wait(context.Background())
	if !errors.Is(err, model.ErrWorkersPending) {
		t.Errorf("Wait() = %v, expected ErrWorkersPending", err)
	}
}

func TestBarrierWaitHonoursCancellation(t *testing.T) {
	b := NewBarrier(t.TempDir(), model.SectionNewness, model.RegionUSA, 2, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, expected context.Canceled", err)
	}
}

func TestBarrierClear(t *testing.T) {
	b := NewBarrier(t.TempDir(), model.SectionMarkdowns, model.RegionUSA, 2, time.Second)
	b.MarkDone("0", nil)
	b.MarkDone("1", nil)

	if err := b.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	done, _ := b.Done()
	if len(done) != 0 {
		t.Errorf("markers left after Clear: %v", done)
	}
}
