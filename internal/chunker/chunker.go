package chunker

import (
	"iter"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxBookmarks is the default number of link entries per chunk.
const DefaultMaxBookmarks = 50

// Each chunk is wrapped so it is a complete, independently parseable
// Netscape bookmark document.
const (
	chunkHeader = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`
	chunkFooter = "</DL><p>\n"
)

// Chunker splits a large Netscape bookmark document into bounded
// fragments. Top-level entries are copied whole, in document order; a
// folder entry is never split across chunks, so every fragment stays a
// structurally valid sub-tree.
type Chunker struct {
	maxBookmarks int
	log          *slog.Logger
}

func New(maxBookmarks int, log *slog.Logger) *Chunker {
	if maxBookmarks <= 0 {
		maxBookmarks = DefaultMaxBookmarks
	}
	if log == nil {
		log = slog.Default()
	}
	return &Chunker{maxBookmarks: maxBookmarks, log: log}
}

// Chunk returns a lazy, finite, single-pass sequence of standalone
// bookmark documents. The underlying tree walk happens once; the
// sequence is not restartable. A flush is triggered when the buffered
// link count reaches the threshold, so a single oversized folder entry
// lands whole in its own chunk rather than being split. A document
// without a root DL yields nothing and logs a warning.
//
// Every top-level DL container contributes entries, in document order.
// Concatenated chunk documents parse into sibling DL containers, so
// re-chunking a concatenation preserves the bookmark multiset instead
// of keeping only the first container's entries.
func (c *Chunker) Chunk(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			c.log.Warn("bookmark markup unparseable, skipping", "error", err)
			return
		}
		roots := findRootLists(doc)
		if len(roots) == 0 {
			c.log.Warn("no root DL element found")
			return
		}

		var buf []*html.Node
		count := 0
		total := 0
		for _, root := range roots {
			for n := root.FirstChild; n != nil; n = n.NextSibling {
				if n.Type != html.ElementNode || n.Data != "dt" {
					continue
				}
				total++
				buf = append(buf, n)
				count += countLinks(n)
				if count >= c.maxBookmarks {
					if !yield(renderChunk(buf)) {
						return
					}
					buf = nil
					count = 0
				}
			}
		}

		if len(buf) > 0 {
			yield(renderChunk(buf))
		} else if total == 0 {
			c.log.Warn("bookmark file contains no entries")
		}
	}
}

// countLinks counts link entries within a copied sub-tree. Folder
// entries themselves do not count toward the chunk limit; the anchors
// inside them do. Anchors without a link target are skipped by the
// parser, so they do not count here either.
func countLinks(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == "a" && attrVal(n, "href") != "" {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countLinks(c)
	}
	return count
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func renderChunk(entries []*html.Node) string {
	var sb strings.Builder
	sb.WriteString(chunkHeader)
	for _, dt := range entries {
		// Rendering into a strings.Builder cannot fail.
		_ = html.Render(&sb, dt)
		sb.WriteString("\n")
	}
	sb.WriteString(chunkFooter)
	return sb.String()
}

// findRootLists collects every top-level DL container in document
// order. The walk does not descend into a found DL, so nested folder
// containers stay with their entries.
func findRootLists(n *html.Node) []*html.Node {
	if n.Type == html.ElementNode && n.Data == "dl" {
		return []*html.Node{n}
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findRootLists(c)...)
	}
	return out
}
