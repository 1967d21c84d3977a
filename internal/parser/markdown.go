package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

// MarkdownParser imports bookmarks from a markdown notes file using
// goldmark: headings open folders by level, links become bookmarks.
// Markdown files carry no timestamps, so AddDate and LastModified stay
// empty.
type MarkdownParser struct {
	md goldmark.Markdown
}

func NewMarkdown() *MarkdownParser {
	return &MarkdownParser{md: goldmark.New()}
}

// ParseContent builds a folder tree from markdown content. Headings
// nest by level under a synthetic root; every link under a heading
// lands in that heading's folder.
func (p *MarkdownParser) ParseContent(content string) (*bookmark.Folder, error) {
	source := []byte(content)
	doc := p.md.Parser().Parse(text.NewReader(source))

	root := bookmark.NewRoot()

	// Track the current nesting with a stack, root at level 0.
	type stackEntry struct {
		folder *bookmark.Folder
		level  int
	}
	stack := []stackEntry{{folder: root, level: 0}}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, source)
			newFolder := &bookmark.Folder{Name: title}

			// Pop until we find a parent with a lower level.
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].folder
			parent.Subfolders = append(parent.Subfolders, newFolder)
			stack = append(stack, stackEntry{folder: newFolder, level: node.Level})
			return ast.WalkSkipChildren, nil

		case *ast.Link:
			url := string(node.Destination)
			if url == "" {
				return ast.WalkSkipChildren, nil
			}
			b := bookmark.Bookmark{
				URL:           url,
				Title:         bookmark.UntitledName,
				SourceBrowser: bookmark.SourceMarkdown,
			}
			if t := inlineText(node, source); t != "" {
				b.Title = t
			}
			top := stack[len(stack)-1].folder
			top.Bookmarks = append(top.Bookmarks, b)
			return ast.WalkSkipChildren, nil

		case *ast.AutoLink:
			url := string(node.URL(source))
			if url == "" {
				return ast.WalkContinue, nil
			}
			top := stack[len(stack)-1].folder
			top.Bookmarks = append(top.Bookmarks, bookmark.Bookmark{
				URL:           url,
				Title:         url,
				SourceBrowser: bookmark.SourceMarkdown,
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// inlineText collects the text content of a node's inline children.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		} else {
			sb.WriteString(inlineText(c, source))
		}
	}
	return strings.TrimSpace(sb.String())
}
