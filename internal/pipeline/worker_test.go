package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dconnell/bookmaster/internal/config"
	"github.com/dconnell/bookmaster/internal/organize"
)

// promptOracle answers the category and structure prompts with canned
// responses, keyed on the system instruction.
type promptOracle struct {
	categoryResponse  string
	structureResponse string
	err               error
	calls             int
}

func (o *promptOracle) Complete(ctx context.Context, system, prompt string) (string, error) {
	o.calls++
	if o.err != nil {
		return "", o.err
	}
	if strings.Contains(system, "categoriz") {
		return o.categoryResponse, nil
	}
	return o.structureResponse, nil
}

func newTestWorker(oracle organize.Oracle) *Worker {
	log := slog.Default()
	return NewWorker(
		organize.NewCategorizer(oracle, log),
		organize.NewOptimizer(oracle, log),
		nil,
		log,
		10,
	)
}

func newTestJob(browser, data string) *Job {
	now := time.Now()
	job := &Job{
		ID:        "job-1",
		Browser:   browser,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData([]byte(data))
	return job
}

const netscapeSample = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://go.dev" ADD_DATE="1700000000">Go</A>
    <DT><A HREF="https://pkg.go.dev">Packages</A>
</DL><p>
`

func TestWorker_NetscapeImportCompletes(t *testing.T) {
	oracle := &promptOracle{
		categoryResponse:  `{"Development": [{"title": "Go", "url": "https://go.dev"}, {"title": "Packages", "url": "https://pkg.go.dev"}]}`,
		structureResponse: `{"folders": [{"name": "Development", "bookmarks": [{"url": "https://go.dev", "title": "Go"}, {"url": "https://pkg.go.dev", "title": "Packages"}], "subfolders": []}]}`,
	}
	w := newTestWorker(oracle)
	job := newTestJob("chrome", netscapeSample)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors: %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.BookmarksParsed != 2 {
		t.Errorf("expected 2 bookmarks parsed, got %d", snap.Progress.BookmarksParsed)
	}
	if snap.Progress.Categorized != 2 {
		t.Errorf("expected 2 categorized, got %d", snap.Progress.Categorized)
	}
	tree := job.Result()
	if tree == nil {
		t.Fatal("expected a result tree")
	}
	if len(tree.Subfolders) != 1 || tree.Subfolders[0].Name != "Development" {
		t.Errorf("unexpected result structure: %+v", tree.Subfolders)
	}
}

func TestWorker_MarkdownImport(t *testing.T) {
	oracle := &promptOracle{
		categoryResponse:  `{}`,
		structureResponse: `{"folders": []}`,
	}
	w := newTestWorker(oracle)
	job := newTestJob("markdown", "# Reading\n\n- [Go Blog](https://go.dev/blog)\n")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors: %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.BookmarksParsed != 1 {
		t.Errorf("expected 1 bookmark parsed, got %d", snap.Progress.BookmarksParsed)
	}
}

func TestWorker_UnsupportedBrowserFails(t *testing.T) {
	w := newTestWorker(&promptOracle{})
	job := newTestJob("netscape-navigator", netscapeSample)

	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, got)
	}
}

func TestWorker_EmptyFileFails(t *testing.T) {
	w := newTestWorker(&promptOracle{})
	job := newTestJob("chrome", "<html><body>nothing here</body></html>")

	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, got)
	}
}

func TestWorker_OracleOutagePartial(t *testing.T) {
	oracle := &promptOracle{
		err: &organize.RetryableError{StatusCode: 529, Message: "overloaded"},
	}
	w := newTestWorker(oracle)
	job := newTestJob("chrome", netscapeSample)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("expected status %q, got %q", StatusPartial, snap.Status)
	}
	// Every categorizer attempt plus the structure call hit the oracle.
	if oracle.calls < MaxRetries+1 {
		t.Errorf("expected at least %d oracle calls, got %d", MaxRetries+1, oracle.calls)
	}
	// Fallback still yields a usable structure.
	tree := job.Result()
	if tree == nil || len(tree.Subfolders) != 1 || tree.Subfolders[0].Name != organize.FallbackFolderName {
		t.Fatalf("expected fallback structure, got %+v", tree)
	}
	flat := tree.Flatten()
	if len(flat) != 2 {
		t.Fatalf("expected 2 bookmarks preserved, got %d", len(flat))
	}
	for _, b := range flat {
		if b.Category != organize.UncategorizedName {
			t.Errorf("expected default category for %s, got %q", b.URL, b.Category)
		}
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, &promptOracle{}, nil, slog.Default())
	// Not started, so nothing drains the queue.

	first := newTestJob("chrome", "")
	first.ID = "job-a"
	if err := o.Submit(first); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second := newTestJob("chrome", "")
	second.ID = "job-b"
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue-full error")
	}
	if got := second.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected rejected job status %q, got %q", StatusFailed, got)
	}
	if o.GetJob("job-a") == nil {
		t.Error("expected queued job to be retrievable")
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(testConfig(), &promptOracle{}, nil, slog.Default())
	o.Start(context.Background())
	o.Stop()

	job := newTestJob("chrome", netscapeSample)
	if err := o.Submit(job); err == nil {
		t.Fatal("expected submit to be rejected after stop")
	}
	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected rejected job status %q, got %q", StatusFailed, got)
	}
}

func TestOrchestrator_ProcessesSubmittedJob(t *testing.T) {
	oracle := &promptOracle{
		categoryResponse:  `{}`,
		structureResponse: `{"folders": []}`,
	}
	o := NewOrchestrator(testConfig(), oracle, nil, slog.Default())
	o.Start(context.Background())
	defer o.Stop()

	job := newTestJob("chrome", netscapeSample)
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		status := o.GetJob(job.ID).Snapshot().Status
		if status == StatusCompleted || status == StatusPartial || status == StatusFailed {
			if status != StatusCompleted {
				t.Fatalf("expected status %q, got %q", StatusCompleted, status)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for job")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func testConfig() config.Config {
	return config.Config{
		MaxBookmarksPerChunk: 10,
		WorkerCount:          1,
		MaxQueueSize:         4,
		JobTTL:               time.Hour,
	}
}
