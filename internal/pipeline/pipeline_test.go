package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/outline/internal/chunker"
	"github.com/dgallion1/outline/internal/config"
	"github.com/dgallion1/outline/internal/outline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOutline(t *testing.T) *outline.Parser {
	t.Helper()
	op, err := outline.New()
	if err != nil {
		t.Fatal(err)
	}
	return op
}

func TestContentHashHex_Consistency(t *testing.T) {
	h := ContentHashHex([]byte("hello world"))
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
	if got := DocID([]byte("hello world")); got != want[:16] {
		t.Errorf("expected doc id %q, got %q", want[:16], got)
	}
}

func TestEncodeULID(t *testing.T) {
	var zero, ones [16]byte
	for i := range ones {
		ones[i] = 0xff
	}
	if got := encodeULID(zero); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}
	if got := encodeULID(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("expected 7ZZZ..., got %q", got)
	}
}

func TestNewJobID_SortsByCreation(t *testing.T) {
	prev := newJobID()
	for range 100 {
		id := newJobID()
		if len(id) != 26 {
			t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
		}
		if strings.Trim(id, crockford) != "" {
			t.Fatalf("unexpected character in %q", id)
		}
		if id <= prev {
			t.Fatalf("expected %q to sort after %q", id, prev)
		}
		prev = id
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.org", []byte("* A\n"), 0, chunker.DefaultConfig())
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusChunking, "chunking"},
	}
	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		snap := job.Snapshot()
		if snap.Status != tr.status || snap.Phase != tr.phase {
			t.Errorf("expected %q/%q, got %q/%q", tr.status, tr.phase, snap.Status, snap.Phase)
		}
		if !snap.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}

	job.complete(nil)
	doc, chunks, ok := job.Result()
	if !ok {
		t.Fatal("expected result after completion")
	}
	if doc != nil {
		t.Errorf("expected nil document, got %+v", doc)
	}
	if chunks == nil || len(chunks) != 0 {
		t.Errorf("expected empty non-nil chunks, got %#v", chunks)
	}
	if job.FileData() != nil {
		t.Error("expected upload to be released after completion")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("a.org", []byte("x"), 0, chunker.DefaultConfig())
	job.Fail("parsing", errors.New("bad heading"))
	job.Fail("parsing", errors.New("again"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if len(snap.Progress.Errors) != 2 || snap.Progress.Errors[0] != "bad heading" {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
	if _, _, ok := job.Result(); ok {
		t.Error("expected no result for failed job")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := NewJob("a.org", nil, 0, chunker.DefaultConfig())
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("a.org", nil, 0, chunker.DefaultConfig())
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Fatal("expected to get job back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	done := NewJob("old.org", nil, 0, chunker.DefaultConfig())
	done.complete(nil)
	running := NewJob("running.org", nil, 0, chunker.DefaultConfig())
	running.SetStatus(StatusParsing, "parsing")
	store.Put(done)
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := NewJob("new.org", nil, 0, chunker.DefaultConfig())
	fresh.complete(nil)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(done.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(running.ID) == nil {
		t.Error("expected unfinished job to survive cleanup")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestWorker_Process(t *testing.T) {
	stats := NewStats(time.Hour)
	w := NewWorker(newOutline(t), false, testLogger(), stats)

	body := strings.Repeat("Some words here. ", 20)
	data := []byte("* Intro\n" + body + "\n** Detail\n" + body + "\n")
	job := NewJob("notes.org", data, 0, chunker.Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 1})
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Sections != 2 || snap.Progress.MaxDepth != 2 {
		t.Errorf("expected 2 sections at depth 2, got %+v", snap.Progress)
	}
	doc, chunks, ok := job.Result()
	if !ok || doc.Sections[0].Children[0].Title != "Detail" {
		t.Fatalf("unexpected result %+v", doc)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := strings.Join(chunks[1].Breadcrumb, " > "); got != "Intro > Detail" {
		t.Errorf("expected breadcrumb %q, got %q", "Intro > Detail", got)
	}
	if stats.Snapshot().Count != 1 {
		t.Errorf("expected one recorded duration, got %d", stats.Snapshot().Count)
	}
}

func TestWorker_ProcessMarkerOverride(t *testing.T) {
	w := NewWorker(newOutline(t), false, testLogger(), nil)
	job := NewJob("notes.org", []byte("# A\n## B\n"), '#', chunker.DefaultConfig())
	w.Process(context.Background(), job)

	doc, _, ok := job.Result()
	if !ok {
		t.Fatalf("expected completed job, got %+v", job.Snapshot())
	}
	if doc.Count() != 2 {
		t.Errorf("expected 2 sections, got %d", doc.Count())
	}
}

func TestWorker_ProcessFailures(t *testing.T) {
	w := NewWorker(newOutline(t), false, testLogger(), nil)

	tests := []struct {
		name     string
		filename string
		data     string
	}{
		{"unsupported", "image.png", "x"},
		{"not a pdf", "report.pdf", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob(tt.filename, []byte(tt.data), 0, chunker.DefaultConfig())
			w.Process(context.Background(), job)
			snap := job.Snapshot()
			if snap.Status != StatusFailed || snap.Phase != "parsing" {
				t.Errorf("expected failed while parsing, got %q/%q", snap.Status, snap.Phase)
			}
			if len(snap.Progress.Errors) == 0 {
				t.Error("expected an error message")
			}
		})
	}
}

func TestOrchestrator_RunsJobs(t *testing.T) {
	cfg := config.Defaults()
	cfg.WorkerCount = 2
	o := NewOrchestrator(cfg, newOutline(t), testLogger())
	o.Start(context.Background())
	defer o.Stop()

	var jobs []*Job
	for range 5 {
		job := NewJob("a.org", []byte("* A\nbody\n** B\n"), 0, chunker.DefaultConfig())
		if err := o.Submit(job); err != nil {
			t.Fatalf("submit: %v", err)
		}
		jobs = append(jobs, job)
	}

	deadline := time.Now().Add(5 * time.Second)
	for _, job := range jobs {
		for !job.Snapshot().Status.Done() {
			if time.Now().After(deadline) {
				t.Fatalf("job %s did not finish", job.ID)
			}
			time.Sleep(5 * time.Millisecond)
		}
		if got := o.GetJob(job.ID); got != job {
			t.Errorf("expected job %s to be tracked", job.ID)
		}
		if s := job.Snapshot().Status; s != StatusCompleted {
			t.Errorf("expected completed, got %q", s)
		}
	}
	if o.Stats().Count != 5 {
		t.Errorf("expected 5 recorded durations, got %d", o.Stats().Count)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Defaults()
	cfg.MaxQueueSize = 1
	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, newOutline(t), testLogger())

	if err := o.Submit(NewJob("a.org", nil, 0, chunker.DefaultConfig())); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.org", nil, 0, chunker.DefaultConfig())
	err := o.Submit(second)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if s := second.Snapshot().Status; s != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %q", s)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	o.Stop()
	o.Stop()
	if err := o.Submit(NewJob("c.org", nil, 0, chunker.DefaultConfig())); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %v %v", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Now()
	stats := NewStats(time.Minute)
	stats.now = func() time.Time { return now }
	stats.Record(10 * time.Millisecond)

	now = now.Add(2 * time.Minute)
	stats.Record(20 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 20 {
		t.Errorf("expected only the recent sample, got %+v", snap)
	}
	if (StatsSnapshot{}) != NewStats(0).Snapshot() {
		t.Error("expected zero snapshot for empty stats")
	}
}
