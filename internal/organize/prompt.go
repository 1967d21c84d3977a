package organize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

const structureSystemPrompt = `You are a bookmark structure optimization agent. Analyze the given bookmarks and create an intuitive folder hierarchy based on their categories and content.

Guidelines:
1. Create a clear and logical folder hierarchy
2. Group related categories together
3. Use subfolders for better organization
4. Keep the structure balanced and not too deep
5. Maintain meaningful folder names

Respond with ONLY a JSON object representing the folder structure:
{
    "folders": [
        {
            "name": "Folder Name",
            "bookmarks": [...],
            "subfolders": [...]
        }
    ]
}

Every folder must have "name", "bookmarks", and "subfolders" fields. Never include any explanatory text or markdown formatting.`

const categorySystemPrompt = `You are an expert bookmark categorizer. Analyze bookmarks and organize them into meaningful categories based on their content, URL, and title.

Follow these guidelines:
1. Create intuitive, user-friendly category names
2. Group similar bookmarks together
3. Consider both the content topic and purpose of the bookmark
4. Handle ambiguous cases by choosing the most relevant category

IMPORTANT: You must ALWAYS respond with valid JSON in this exact format:
{
    "Category Name": [
        {"title": "bookmark title", "url": "bookmark url"}
    ]
}

Never include any explanatory text or markdown formatting. Only output valid JSON.`

// BuildStructurePrompt serializes the bookmark list, the fixed
// instruction, and request metadata into one oracle prompt. The
// existing structure, when present, is passed through as a hint only;
// it is never merged algorithmically.
func BuildStructurePrompt(bookmarks []bookmark.Bookmark, existing *bookmark.Folder) string {
	var sb strings.Builder
	sb.WriteString("Please organize these bookmarks into a logical folder structure:\n\nBookmarks:\n")
	for _, b := range bookmarks {
		sb.WriteString(describeBookmark(b))
	}

	sb.WriteString(`
Create a folder hierarchy that:
1. Groups related bookmarks together
2. Uses meaningful folder names
3. Creates subfolders when appropriate
4. Maintains a balanced structure

Respond with a JSON object containing the folder structure.
Each folder should have:
- name: folder name
- bookmarks: list of bookmark objects
- subfolders: list of subfolder objects
`)

	if existing != nil {
		if hint, err := json.Marshal(existing); err == nil {
			sb.WriteString("\nExisting structure, for reference only:\n")
			sb.Write(hint)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nContext:\n")
	fmt.Fprintf(&sb, "num_bookmarks: %d\n", len(bookmarks))
	fmt.Fprintf(&sb, "has_existing_structure: %t\n", existing != nil)

	return sb.String()
}

// BuildCategoryPrompt serializes a bookmark batch for categorization.
func BuildCategoryPrompt(bookmarks []bookmark.Bookmark) string {
	var sb strings.Builder
	sb.WriteString("Categorize these bookmarks:\n\n")
	for _, b := range bookmarks {
		fmt.Fprintf(&sb, "- Title: %s\n  URL: %s\n", titleOrDefault(b), urlOrDefault(b))
	}
	sb.WriteString("\nRespond with ONLY the JSON object mapping category names to bookmark lists.")
	return sb.String()
}

func describeBookmark(b bookmark.Bookmark) string {
	category := b.Category
	if category == "" {
		category = "Uncategorized"
	}
	return fmt.Sprintf("- Title: %s\n  URL: %s\n  Category: %s\n", titleOrDefault(b), urlOrDefault(b), category)
}

func titleOrDefault(b bookmark.Bookmark) string {
	if b.Title == "" {
		return bookmark.UntitledName
	}
	return b.Title
}

func urlOrDefault(b bookmark.Bookmark) string {
	if b.URL == "" {
		return "No URL"
	}
	return b.URL
}
