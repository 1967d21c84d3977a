package bookmark

import "testing"

func TestFlatten_DocumentOrder(t *testing.T) {
	tree := &Folder{
		Name:      RootName,
		Bookmarks: []Bookmark{{URL: "a"}, {URL: "b"}},
		Subfolders: []*Folder{
			{
				Name:      "Dev",
				Bookmarks: []Bookmark{{URL: "c"}},
				Subfolders: []*Folder{
					{Name: "Go", Bookmarks: []Bookmark{{URL: "d"}}},
				},
			},
			{Name: "News", Bookmarks: []Bookmark{{URL: "e"}}},
		},
	}

	flat := tree.Flatten()
	want := []string{"a", "b", "c", "d", "e"}
	if len(flat) != len(want) {
		t.Fatalf("expected %d bookmarks, got %d", len(want), len(flat))
	}
	for i, url := range want {
		if flat[i].URL != url {
			t.Errorf("flat[%d]: expected %q, got %q", i, url, flat[i].URL)
		}
	}

	if got := tree.Count(); got != len(want) {
		t.Errorf("Count: expected %d, got %d", len(want), got)
	}
}

func TestMergeChunks_ConcatenatesInChunkOrder(t *testing.T) {
	chunk1 := &Folder{
		Name:       RootName,
		Bookmarks:  []Bookmark{{URL: "a"}},
		Subfolders: []*Folder{{Name: "Dev"}},
	}
	chunk2 := &Folder{
		Name:       RootName,
		Bookmarks:  []Bookmark{{URL: "b"}, {URL: "c"}},
		Subfolders: []*Folder{{Name: "News"}},
	}

	merged := MergeChunks(chunk1, chunk2)

	if merged.Name != RootName {
		t.Errorf("expected synthetic root name %q, got %q", RootName, merged.Name)
	}
	if len(merged.Bookmarks) != 3 {
		t.Fatalf("expected 3 top-level bookmarks, got %d", len(merged.Bookmarks))
	}
	for i, url := range []string{"a", "b", "c"} {
		if merged.Bookmarks[i].URL != url {
			t.Errorf("bookmark %d: expected %q, got %q", i, url, merged.Bookmarks[i].URL)
		}
	}
	if len(merged.Subfolders) != 2 {
		t.Fatalf("expected 2 subfolders, got %d", len(merged.Subfolders))
	}
	if merged.Subfolders[0].Name != "Dev" || merged.Subfolders[1].Name != "News" {
		t.Errorf("subfolder order not preserved: %q, %q", merged.Subfolders[0].Name, merged.Subfolders[1].Name)
	}
}

func TestMergeChunks_Empty(t *testing.T) {
	merged := MergeChunks()
	if merged.Count() != 0 {
		t.Errorf("expected empty merge result, got %d bookmarks", merged.Count())
	}

	merged = MergeChunks(nil, NewRoot())
	if merged.Count() != 0 || len(merged.Subfolders) != 0 {
		t.Error("expected nil chunks to be skipped")
	}
}
