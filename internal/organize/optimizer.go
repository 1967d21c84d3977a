package organize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

// FallbackFolderName is the name of the flat wrapper folder returned
// when a structure proposal cannot be trusted.
const FallbackFolderName = "All Bookmarks"

// Optimizer asks the oracle to propose a folder hierarchy for a flat
// set of categorized bookmarks. It never fails: any request, decode,
// or shape problem degrades to a single flat folder holding every
// input bookmark, so bookmarks are never lost to a misbehaving oracle.
type Optimizer struct {
	oracle Oracle
	log    *slog.Logger
}

func NewOptimizer(oracle Oracle, log *slog.Logger) *Optimizer {
	if log == nil {
		log = slog.Default()
	}
	return &Optimizer{oracle: oracle, log: log}
}

// Optimize issues one oracle request and returns the proposed
// hierarchy under a synthetic root. Empty input returns an empty root
// without calling the oracle. The existing structure is a hint only.
func (o *Optimizer) Optimize(ctx context.Context, bookmarks []bookmark.Bookmark, existing *bookmark.Folder) *bookmark.Folder {
	if len(bookmarks) == 0 {
		return bookmark.NewRoot()
	}

	prompt := BuildStructurePrompt(bookmarks, existing)
	resp, err := o.oracle.Complete(ctx, structureSystemPrompt, prompt)
	if err != nil {
		o.log.Warn("structure oracle request failed, using fallback", "error", err, "bookmarks", len(bookmarks))
		return fallbackStructure(bookmarks)
	}

	folders, err := decodeProposal(resp)
	if err != nil {
		o.log.Warn("structure proposal rejected, using fallback", "error", err, "bookmarks", len(bookmarks))
		return fallbackStructure(bookmarks)
	}

	root := bookmark.NewRoot()
	root.Subfolders = folders
	return root
}

// decodeProposal validates an untrusted proposal: the text must decode
// as a JSON object carrying the "folders" key, and the folders must
// decode into the Folder shape. No other shape is accepted.
func decodeProposal(text string) ([]*bookmark.Folder, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	raw, ok := top["folders"]
	if !ok {
		return nil, errors.New(`proposal missing "folders" key`)
	}
	var folders []*bookmark.Folder
	if err := json.Unmarshal(raw, &folders); err != nil {
		return nil, fmt.Errorf("decode folders: %w", err)
	}
	return folders, nil
}

// fallbackStructure is the deterministic safety net: one flat folder
// with every input bookmark unmodified and no subfolders.
func fallbackStructure(bookmarks []bookmark.Bookmark) *bookmark.Folder {
	root := bookmark.NewRoot()
	root.Subfolders = []*bookmark.Folder{{
		Name:      FallbackFolderName,
		Bookmarks: bookmarks,
	}}
	return root
}
