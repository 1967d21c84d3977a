package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

const netscapeHeader = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`

// Netscape renders a folder tree back to Netscape bookmark markup, the
// format every supported browser re-imports. The synthetic root folder
// itself is not rendered; its contents become the document's top-level
// entries, so export output round-trips through the parser.
func Netscape(root *bookmark.Folder) string {
	var sb strings.Builder
	sb.WriteString(netscapeHeader)
	if root != nil {
		writeFolderBody(&sb, root, 1)
	}
	sb.WriteString("</DL><p>\n")
	return sb.String()
}

func writeFolderBody(sb *strings.Builder, f *bookmark.Folder, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, b := range f.Bookmarks {
		sb.WriteString(indent)
		sb.WriteString("<DT><A HREF=\"")
		sb.WriteString(html.EscapeString(b.URL))
		sb.WriteString("\"")
		if b.AddDate != "" {
			fmt.Fprintf(sb, " ADD_DATE=%q", html.EscapeString(b.AddDate))
		}
		if b.LastModified != "" {
			fmt.Fprintf(sb, " LAST_MODIFIED=%q", html.EscapeString(b.LastModified))
		}
		sb.WriteString(">")
		sb.WriteString(html.EscapeString(b.Title))
		sb.WriteString("</A>\n")
	}
	for _, sub := range f.Subfolders {
		sb.WriteString(indent)
		sb.WriteString("<DT><H3>")
		sb.WriteString(html.EscapeString(sub.Name))
		sb.WriteString("</H3>\n")
		sb.WriteString(indent)
		sb.WriteString("<DL><p>\n")
		writeFolderBody(sb, sub, depth+1)
		sb.WriteString(indent)
		sb.WriteString("</DL><p>\n")
	}
}
