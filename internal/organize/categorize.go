package organize

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

// UncategorizedName is the category given to bookmarks the oracle did
// not place.
const UncategorizedName = "Uncategorized"

// Categorizer assigns a category label to each bookmark with one
// oracle call per batch. Assignment happens at most once per bookmark,
// before structure optimization.
type Categorizer struct {
	oracle Oracle
	log    *slog.Logger
}

func NewCategorizer(oracle Oracle, log *slog.Logger) *Categorizer {
	if log == nil {
		log = slog.Default()
	}
	return &Categorizer{oracle: oracle, log: log}
}

// Categorize returns a copy of the input with Category filled in.
// Bookmarks the oracle did not place keep "Uncategorized", and a
// malformed response categorizes nothing without failing. The returned
// error is non-nil only for the request itself, so callers may retry
// transient failures; the returned slice is valid either way.
func (c *Categorizer) Categorize(ctx context.Context, bookmarks []bookmark.Bookmark) ([]bookmark.Bookmark, error) {
	out := make([]bookmark.Bookmark, len(bookmarks))
	copy(out, bookmarks)
	for i := range out {
		if out[i].Category == "" {
			out[i].Category = UncategorizedName
		}
	}
	if len(out) == 0 {
		return out, nil
	}

	resp, err := c.oracle.Complete(ctx, categorySystemPrompt, BuildCategoryPrompt(bookmarks))
	if err != nil {
		return out, err
	}

	var categories map[string][]struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal([]byte(resp), &categories); err != nil {
		c.log.Warn("categorizer response undecodable, keeping defaults", "error", err)
		return out, nil
	}

	byURL := make(map[string]string, len(out))
	for name, entries := range categories {
		if name == "" {
			continue
		}
		for _, e := range entries {
			if e.URL != "" {
				byURL[e.URL] = name
			}
		}
	}

	placed := 0
	for i := range out {
		if cat, ok := byURL[out[i].URL]; ok {
			out[i].Category = cat
			placed++
		}
	}
	c.log.Debug("categorization applied", "placed", placed, "total", len(out))
	return out, nil
}
