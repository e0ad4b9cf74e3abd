package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pdp-recon/internal/catalog"
	"pdp-recon/internal/model"
)

type recordingValidator struct {
	mu       sync.Mutex
	seen     map[int]*model.Product
	inFlight atomic.Int32
	peak     atomic.Int32
	fail     map[int]error
	block    bool
}

func (v *recordingValidator) Validate(ctx context.Context, row model.ExpectedRow, product *model.Product) error {
	n := v.inFlight.Add(1)
	defer v.inFlight.Add(-1)
	for {
		p := v.peak.Load()
		if n <= p || v.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if v.block {
		<-ctx.Done()
		return ctx.Err()
	}
	time.Sleep(5 * time.Millisecond)

	v.mu.Lock()
	v.seen[row.ProductID] = product
	v.mu.Unlock()
	return v.fail[row.ProductID]
}

type counter struct{ n atomic.Int32 }

func (c *counter) Increment() error { c.n.Add(1); return nil }

func rows(n int) []model.ExpectedRow {
	out := make([]model.ExpectedRow, n)
	for i := range out {
		out[i] = model.ExpectedRow{ProductID: i + 1, RowNumber: i + 3, Name: "Product"}
	}
	out[0].Name = "Align Pant"
	return out
}

func TestRunChecksEveryRow(t *testing.T) {
	v := &recordingValidator{seen: map[int]*model.Product{}, fail: map[int]error{3: errors.New("page crashed")}}
	cat := catalog.New([]model.Product{{ID: 1, Name: "Align Pant", Href: "/p/align"}})
	progress := &counter{}

	r := New(v, cat, model.RegionUSA, Options{Workers: 3})
	summary, err := r.Run(context.Background(), rows(10), progress)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Checked != 9 || summary.Failed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.Err() == nil {
		t.Error("summary should carry the failure")
	}
	if progress.n.Load() != 10 {
		t.Errorf("progress = %d, expected 10", progress.n.Load())
	}
	if peak := v.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency %d exceeds worker limit", peak)
	}
	if v.seen[1] == nil || v.seen[1].Href != "/p/align" {
		t.Error("catalog hit should be passed to the validator")
	}
	if v.seen[2] != nil {
		t.Error("catalog miss should pass a nil product")
	}
}

func TestRunPerCheckTimeout(t *testing.T) {
	v := &recordingValidator{seen: map[int]*model.Product{}, block: true}
	r := New(v, nil, model.RegionUSA, Options{Workers: 2, Timeout: 20 * time.Millisecond})

	summary, err := r.Run(context.Background(), rows(2), nil)
	if err != nil {
		t.Fatalf("timeouts are per check, Run should not fail: %v", err)
	}
	if summary.Failed != 2 || !errors.Is(summary.Err(), context.DeadlineExceeded) {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestRunCancelled(t *testing.T) {
	v := &recordingValidator{seen: map[int]*model.Product{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(v, nil, model.RegionUSA, Options{Workers: 2, RatePerSecond: 1})
	_, err := r.Run(ctx, rows(5), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
