package organize

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

// stubOracle returns a canned response (or error) and records calls.
type stubOracle struct {
	response string
	err      error
	calls    int
}

func (s *stubOracle) Complete(ctx context.Context, system, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func sampleBookmarks() []bookmark.Bookmark {
	return []bookmark.Bookmark{
		{URL: "https://go.dev", Title: "Go", Category: "Development"},
		{URL: "https://news.example.com", Title: "News"},
	}
}

func TestOptimize_EmptyInputSkipsOracle(t *testing.T) {
	oracle := &stubOracle{response: `{"folders": []}`}
	o := NewOptimizer(oracle, slog.Default())

	root := o.Optimize(context.Background(), nil, nil)

	if oracle.calls != 0 {
		t.Errorf("expected no oracle call for empty input, got %d", oracle.calls)
	}
	if root.Count() != 0 || len(root.Subfolders) != 0 {
		t.Errorf("expected empty root folder, got %d bookmarks, %d subfolders", root.Count(), len(root.Subfolders))
	}
}

func TestOptimize_UndecodableResponseFallsBack(t *testing.T) {
	oracle := &stubOracle{response: "not json"}
	o := NewOptimizer(oracle, slog.Default())
	input := sampleBookmarks()

	root := o.Optimize(context.Background(), input, nil)

	if oracle.calls != 1 {
		t.Fatalf("expected exactly 1 oracle call, got %d", oracle.calls)
	}
	assertFallback(t, root, input)
}

func TestOptimize_MissingFoldersKeyFallsBack(t *testing.T) {
	oracle := &stubOracle{response: `{"structure": []}`}
	o := NewOptimizer(oracle, slog.Default())
	input := sampleBookmarks()

	assertFallback(t, o.Optimize(context.Background(), input, nil), input)
}

func TestOptimize_WrongShapeFallsBack(t *testing.T) {
	// Top level must be an object, not an array.
	oracle := &stubOracle{response: `[{"name": "Dev"}]`}
	o := NewOptimizer(oracle, slog.Default())
	input := sampleBookmarks()

	assertFallback(t, o.Optimize(context.Background(), input, nil), input)
}

func TestOptimize_RequestErrorFallsBack(t *testing.T) {
	oracle := &stubOracle{err: errors.New("connection refused")}
	o := NewOptimizer(oracle, slog.Default())
	input := sampleBookmarks()

	assertFallback(t, o.Optimize(context.Background(), input, nil), input)
}

func TestOptimize_ValidProposalPassesThrough(t *testing.T) {
	oracle := &stubOracle{response: `{
		"folders": [
			{
				"name": "Dev",
				"bookmarks": [{"url": "https://go.dev", "title": "Go"}],
				"subfolders": [
					{"name": "Docs", "bookmarks": [], "subfolders": []}
				]
			}
		]
	}`}
	o := NewOptimizer(oracle, slog.Default())

	root := o.Optimize(context.Background(), sampleBookmarks(), nil)

	if len(root.Subfolders) != 1 {
		t.Fatalf("expected 1 top-level folder, got %d", len(root.Subfolders))
	}
	dev := root.Subfolders[0]
	if dev.Name != "Dev" {
		t.Errorf("expected folder name %q, got %q", "Dev", dev.Name)
	}
	if len(dev.Bookmarks) != 1 || dev.Bookmarks[0].URL != "https://go.dev" {
		t.Errorf("proposal bookmarks not passed through verbatim: %+v", dev.Bookmarks)
	}
	if len(dev.Subfolders) != 1 || dev.Subfolders[0].Name != "Docs" {
		t.Errorf("proposal subfolders not passed through verbatim: %+v", dev.Subfolders)
	}
}

func TestOptimize_ExistingStructureIsHintOnly(t *testing.T) {
	oracle := &stubOracle{response: `{"folders": []}`}
	o := NewOptimizer(oracle, slog.Default())
	existing := &bookmark.Folder{Name: "Old", Subfolders: []*bookmark.Folder{{Name: "Keep Me"}}}

	root := o.Optimize(context.Background(), sampleBookmarks(), existing)

	// The proposal said no folders; the existing structure must not be
	// merged back in by the optimizer.
	if len(root.Subfolders) != 0 {
		t.Errorf("expected empty proposal to pass through, got %d folders", len(root.Subfolders))
	}
}

func assertFallback(t *testing.T, root *bookmark.Folder, input []bookmark.Bookmark) {
	t.Helper()
	if len(root.Subfolders) != 1 {
		t.Fatalf("expected a single fallback folder, got %d", len(root.Subfolders))
	}
	fb := root.Subfolders[0]
	if fb.Name != FallbackFolderName {
		t.Errorf("expected fallback name %q, got %q", FallbackFolderName, fb.Name)
	}
	if len(fb.Subfolders) != 0 {
		t.Errorf("fallback must be flat, got %d subfolders", len(fb.Subfolders))
	}
	if len(fb.Bookmarks) != len(input) {
		t.Fatalf("expected %d bookmarks in fallback, got %d", len(input), len(fb.Bookmarks))
	}
	for i := range input {
		if fb.Bookmarks[i] != input[i] {
			t.Errorf("bookmark %d modified by fallback: %+v != %+v", i, fb.Bookmarks[i], input[i])
		}
	}
}
