package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dconnell/bookmaster/internal/bookmark"
	"github.com/dconnell/bookmaster/internal/chunker"
	"github.com/dconnell/bookmaster/internal/organize"
	"github.com/dconnell/bookmaster/internal/parser"
	"github.com/dconnell/bookmaster/internal/store"
)

// Worker processes a single import job: chunked parse, categorize,
// structure optimization, persistence.
type Worker struct {
	categorizer *organize.Categorizer
	optimizer   *organize.Optimizer
	store       *store.Store
	log         *slog.Logger

	maxBookmarksPerChunk int
}

func NewWorker(cat *organize.Categorizer, opt *organize.Optimizer, st *store.Store, log *slog.Logger, maxBookmarksPerChunk int) *Worker {
	return &Worker{
		categorizer:          cat,
		optimizer:            opt,
		store:                st,
		log:                  log,
		maxBookmarksPerChunk: maxBookmarksPerChunk,
	}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "browser", job.Browser, "filename", job.Filename)

	// Phase 1: Parse chunk by chunk. Markdown files carry no Netscape
	// structure, so they parse whole instead of chunked.
	job.SetStatus(StatusParsing, "parsing")
	var trees []*bookmark.Folder
	hadErrors := false
	if job.Browser == string(bookmark.SourceMarkdown) {
		tree, err := parser.NewMarkdown().ParseContent(string(job.FileData()))
		if err != nil {
			log.Error("markdown parse failed", "error", err)
			job.AddError(fmt.Sprintf("parse: %s", err))
			job.SetStatus(StatusFailed, "parsing")
			return
		}
		trees = append(trees, tree)
		job.AddChunk(tree.Count())
	} else {
		dialect, err := parser.ForBrowser(job.Browser)
		if err != nil {
			log.Error("unsupported browser", "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "parsing")
			return
		}

		p := parser.New(dialect, chunker.New(w.maxBookmarksPerChunk, w.log), w.log)
		for folder, err := range p.Parse(string(job.FileData())) {
			if err != nil {
				// A bad chunk does not abort the remaining chunks.
				log.Error("chunk parse failed", "error", err)
				job.AddError(fmt.Sprintf("parse: %s", err))
				hadErrors = true
				continue
			}
			trees = append(trees, folder)
			job.AddChunk(folder.Count())
		}
	}

	merged := bookmark.MergeChunks(trees...)
	flat := merged.Flatten()
	log.Info("parsed bookmark file", "chunks", len(trees), "bookmarks", len(flat))

	if len(flat) == 0 {
		job.AddError("no bookmarks found")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Categorize, retrying transient oracle failures.
	job.SetStatus(StatusCategorizing, "categorizing")
	categorized := flat
	var catErr error
	for attempt := range MaxRetries {
		categorized, catErr = w.categorizer.Categorize(ctx, flat)
		if catErr == nil || !IsRetryable(catErr) {
			break
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable categorizer error", "attempt", attempt, "error", catErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "categorizing")
			return
		}
	}
	if catErr != nil {
		// The categorizer still returned a usable default copy.
		log.Warn("categorization unavailable, keeping defaults", "error", catErr)
		job.AddError(fmt.Sprintf("categorize: %s", catErr))
		hadErrors = true
	}
	placed := 0
	for _, b := range categorized {
		if b.Category != "" && b.Category != organize.UncategorizedName {
			placed++
		}
	}
	job.SetCategorized(placed)

	// Phase 3: Structure optimization. Never fails; degrades to the
	// flat fallback folder on oracle trouble.
	job.SetStatus(StatusOrganizing, "organizing")
	tree := w.optimizer.Optimize(ctx, categorized, nil)

	// Phase 4: Persist.
	job.SetStatus(StatusStoring, "storing")
	if w.store != nil {
		if err := w.store.ReplaceTree(ctx, tree); err != nil {
			log.Error("store failed", "error", err)
			job.AddError(fmt.Sprintf("store: %s", err))
			hadErrors = true
		}
	}
	job.SetResult(tree)

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("import complete", "bookmarks", len(flat), "categorized", placed, "status", job.Snapshot().Status)
}
