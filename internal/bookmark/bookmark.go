package bookmark

// SourceBrowser identifies which export dialect a bookmark came from.
type SourceBrowser string

const (
	SourceChrome   SourceBrowser = "chrome"
	SourceEdge     SourceBrowser = "edge"
	SourceOpera    SourceBrowser = "opera"
	SourceMarkdown SourceBrowser = "markdown"
	SourceUnknown  SourceBrowser = "unknown"
)

// UntitledName is the placeholder title for bookmarks whose source
// markup carries no usable title.
const UntitledName = "Untitled"

// Bookmark is a single saved link. AddDate and LastModified carry the
// source's raw timestamp strings; their encoding is browser-specific
// and they are not interpreted here. Category is empty until the
// categorization stage assigns it, once, before structure optimization.
type Bookmark struct {
	URL           string        `json:"url"`
	Title         string        `json:"title"`
	AddDate       string        `json:"add_date,omitempty"`
	LastModified  string        `json:"last_modified,omitempty"`
	SourceBrowser SourceBrowser `json:"source_browser,omitempty"`
	Category      string        `json:"category,omitempty"`
}

// Folder is a node in the bookmark tree. Bookmarks and Subfolders keep
// document order. A folder exclusively owns its children and holds no
// back-references, so the tree is acyclic by construction.
type Folder struct {
	Name       string     `json:"name"`
	Bookmarks  []Bookmark `json:"bookmarks"`
	Subfolders []*Folder  `json:"subfolders"`
}

// RootName is the name given to the synthetic top-level folder of each
// parsed chunk and of merged results.
const RootName = "Root"

// NewRoot returns an empty synthetic root folder.
func NewRoot() *Folder {
	return &Folder{Name: RootName}
}

// Flatten returns every bookmark in the tree in document order: this
// folder's bookmarks first, then each subfolder depth-first.
func (f *Folder) Flatten() []Bookmark {
	var out []Bookmark
	var walk func(*Folder)
	walk = func(n *Folder) {
		out = append(out, n.Bookmarks...)
		for _, sub := range n.Subfolders {
			walk(sub)
		}
	}
	walk(f)
	return out
}

// Count returns the number of bookmarks in the tree.
func (f *Folder) Count() int {
	n := len(f.Bookmarks)
	for _, sub := range f.Subfolders {
		n += sub.Count()
	}
	return n
}

// MergeChunks reconciles per-chunk trees into one hierarchy. Chunked
// parsing yields a sequence of sibling top-level trees, not one tree;
// the merge concatenates each chunk's bookmarks and subfolders under a
// fresh synthetic root, in chunk order, preserving the original
// document order. Same-named folders from different chunks are kept
// separate, not structurally re-merged.
func MergeChunks(chunks ...*Folder) *Folder {
	root := NewRoot()
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		root.Bookmarks = append(root.Bookmarks, chunk.Bookmarks...)
		root.Subfolders = append(root.Subfolders, chunk.Subfolders...)
	}
	return root
}
