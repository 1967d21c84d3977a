package parser

import (
	"fmt"
	"strings"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

// Dialect captures the per-browser differences in Netscape bookmark
// markup. The traversal is identical for every browser; only the
// timestamp attribute names and the source tag vary, so dialects are
// data rather than separate parser types.
type Dialect struct {
	Browser      bookmark.SourceBrowser
	AddedAttr    string
	ModifiedAttr string
}

// Attribute keys are compared lowercase because golang.org/x/net/html
// lowercases attribute names during parsing.
var (
	Chrome = Dialect{Browser: bookmark.SourceChrome, AddedAttr: "add_date", ModifiedAttr: "last_modified"}
	Edge   = Dialect{Browser: bookmark.SourceEdge, AddedAttr: "add_date", ModifiedAttr: "last_modified"}
	Opera  = Dialect{Browser: bookmark.SourceOpera, AddedAttr: "add_date", ModifiedAttr: "last_modified"}
)

// ForBrowser returns the dialect for a browser name.
func ForBrowser(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome":
		return Chrome, nil
	case "edge":
		return Edge, nil
	case "opera":
		return Opera, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported browser: %q", name)
	}
}
