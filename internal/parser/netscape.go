package parser

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/dconnell/bookmaster/internal/bookmark"
	"github.com/dconnell/bookmaster/internal/chunker"
)

// Parser reads Netscape bookmark exports for one browser dialect.
// Large files are split by the chunker so each chunk parses as an
// independent tree.
type Parser struct {
	dialect Dialect
	chunker *chunker.Chunker
	log     *slog.Logger
}

func New(dialect Dialect, ch *chunker.Chunker, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	if ch == nil {
		ch = chunker.New(chunker.DefaultMaxBookmarks, log)
	}
	return &Parser{dialect: dialect, chunker: ch, log: log}
}

// ParseFile reads a bookmark export and returns a lazy sequence of one
// Folder per chunk, in chunk order. The sequence is single-pass and
// not restartable. The chunk trees are siblings, not one hierarchy;
// callers that need a unified tree must reconcile them with
// bookmark.MergeChunks.
func (p *Parser) ParseFile(path string) (iter.Seq2[*bookmark.Folder, error], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read bookmark file: %w", err)
	}
	return p.Parse(string(data)), nil
}

// Parse chunks in-memory markup and parses each chunk lazily. A chunk
// that fails to parse yields its error without aborting later chunks.
func (p *Parser) Parse(content string) iter.Seq2[*bookmark.Folder, error] {
	return func(yield func(*bookmark.Folder, error) bool) {
		for chunk := range p.chunker.Chunk(content) {
			folder, err := p.ParseContent(chunk)
			if !yield(folder, err) {
				return
			}
		}
	}
}

// ParseContent parses one standalone bookmark document into a tree
// rooted at a synthetic "Root" folder.
func (p *Parser) ParseContent(content string) (*bookmark.Folder, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s bookmarks: %w", p.dialect.Browser, err)
	}
	root := findRootDL(doc)
	if root == nil {
		return nil, fmt.Errorf("%w: missing root DL element", ErrInvalidFormat)
	}
	folder := p.parseFolder(bookmark.RootName, root)
	return folder, nil
}

// parseFolder builds a Folder from a DL container, in document order:
// a DT holding an anchor becomes a bookmark of this level, a DT
// holding a nested DL becomes a subfolder. A nested container without
// a heading still parses, as an unnamed folder.
func (p *Parser) parseFolder(name string, dl *html.Node) *bookmark.Folder {
	folder := &bookmark.Folder{Name: name}
	for n := dl.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || n.Data != "dt" {
			continue
		}
		if a := childElement(n, "a"); a != nil {
			if b, ok := p.bookmarkFromAnchor(a); ok {
				folder.Bookmarks = append(folder.Bookmarks, b)
			}
			continue
		}
		if sub := childElement(n, "dl"); sub != nil {
			title := ""
			if h3 := childElement(n, "h3"); h3 != nil {
				title = textContent(h3)
			}
			folder.Subfolders = append(folder.Subfolders, p.parseFolder(title, sub))
		}
	}
	return folder
}

// bookmarkFromAnchor extracts a bookmark from an anchor element.
// Missing attributes get defaults rather than failing the parse; an
// anchor without a link target is skipped.
func (p *Parser) bookmarkFromAnchor(a *html.Node) (bookmark.Bookmark, bool) {
	b := bookmark.Bookmark{
		Title:         bookmark.UntitledName,
		SourceBrowser: p.dialect.Browser,
	}
	for _, attr := range a.Attr {
		switch attr.Key {
		case "href":
			b.URL = attr.Val
		case p.dialect.AddedAttr:
			b.AddDate = attr.Val
		case p.dialect.ModifiedAttr:
			b.LastModified = attr.Val
		}
	}
	if b.URL == "" {
		return bookmark.Bookmark{}, false
	}
	if t := textContent(a); t != "" {
		b.Title = t
	}
	return b, true
}

// childElement returns the first immediate child element with the
// given tag, or nil.
func childElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}

func findRootDL(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "dl" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dl := findRootDL(c); dl != nil {
			return dl
		}
	}
	return nil
}
