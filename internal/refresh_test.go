package overlay

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Zuplu/sc-overlay/internal/status"
	"github.com/Zuplu/sc-overlay/internal/utils/log"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.INFO)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestRefresherLogsTransitionsOnly(t *testing.T) {
	s, f := newTestServices(t)
	buf := captureLog(t)
	r := newRefresher(s)

	if state := r.refreshStatus(context.Background()); state != status.OK {
		t.Fatalf("state = %q", state)
	}
	r.refreshStatus(context.Background())
	if n := strings.Count(buf.String(), "RSI status: Operational"); n != 1 {
		t.Errorf("status logged %d times, want 1:\n%s", n, buf)
	}

	f.setStatus(`<title>Major Outage</title>`)
	s.Store.Status.Purge()
	if state := r.refreshStatus(context.Background()); state != status.MAJOR {
		t.Fatalf("state = %q", state)
	}
	if !strings.Contains(buf.String(), "RSI status: Major Outage") {
		t.Errorf("transition not logged:\n%s", buf)
	}

	r.refreshHealth(context.Background())
	r.refreshHealth(context.Background())
	if n := strings.Count(buf.String(), "Assistant reachable"); n != 1 {
		t.Errorf("health logged %d times, want 1", n)
	}
}

func TestRefresherRunStopsWithContext(t *testing.T) {
	s, f := newTestServices(t)
	captureLog(t)
	r := newRefresher(s)
	r.statusInterval = 10 * time.Millisecond
	r.healthInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.run(ctx)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
	// The status cache absorbs every tick after the first scrape.
	if n := f.statusHits.Load(); n != 1 {
		t.Errorf("status page fetched %d times, want 1", n)
	}
}
