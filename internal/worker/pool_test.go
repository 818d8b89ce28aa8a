package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nvdecode/internal/logging"
)

func TestPoolRequiresURLs(t *testing.T) {
	p := &Pool{Logger: logging.NewNop()}
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected an error for an empty URL list")
	}
}

func TestPoolRunsOneWorkerPerURL(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}

	p := &Pool{
		GPU:    1,
		URLs:   []string{"rtsp://cam-a/stream", "rtsp://cam-b/stream"},
		Logger: logging.NewNop(),
		run: func(ctx context.Context, w *Worker) error {
			mu.Lock()
			defer mu.Unlock()
			if w.GPU != 1 {
				t.Errorf("worker for %s got gpu %d", w.URL, w.GPU)
			}
			seen[w.URL] = w.Tag
			return nil
		},
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(seen))
	}
	if seen["rtsp://cam-a/stream"] == seen["rtsp://cam-b/stream"] {
		t.Fatal("workers must get distinct tags")
	}
}

func TestPoolJoinOutlivesFailedWorker(t *testing.T) {
	// One worker fails immediately; the join must still wait for the
	// slow sibling to finish.
	slowDone := make(chan struct{})

	p := &Pool{
		URLs:   []string{"rtsp://fails/stream", "rtsp://slow/stream"},
		Logger: logging.NewNop(),
		run: func(ctx context.Context, w *Worker) error {
			if strings.Contains(w.URL, "fails") {
				return errors.New("connection refused")
			}
			select {
			case <-ctx.Done():
				t.Error("sibling failure must not cancel a running worker")
			case <-time.After(50 * time.Millisecond):
			}
			close(slowDone)
			return nil
		},
	}

	err := p.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "rtsp://fails/stream") {
		t.Fatalf("expected the failing worker's error, got %v", err)
	}
	select {
	case <-slowDone:
	default:
		t.Fatal("pool returned before the slow worker finished")
	}
}
