package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

// Store persists bookmark trees in SQLite. The schema mirrors the
// in-memory model: folders form a parent_id tree, bookmarks hang off
// one folder each.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	createTables := `
	CREATE TABLE IF NOT EXISTS folders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		parent_id INTEGER,
		FOREIGN KEY(parent_id) REFERENCES folders(id)
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		add_date TEXT NOT NULL DEFAULT '',
		last_modified TEXT NOT NULL DEFAULT '',
		source_browser TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		folder_id INTEGER NOT NULL,
		FOREIGN KEY(folder_id) REFERENCES folders(id)
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_folder ON bookmarks(folder_id);
	CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);
	`
	_, err := db.Exec(createTables)
	return err
}

// ReplaceTree replaces all stored data with the given folder tree.
func (s *Store) ReplaceTree(ctx context.Context, root *bookmark.Folder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks`); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folders`); err != nil {
		return fmt.Errorf("clear folders: %w", err)
	}

	if root != nil {
		if err := insertFolder(ctx, tx, root, nil); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertFolder(ctx context.Context, tx *sql.Tx, f *bookmark.Folder, parentID *int64) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO folders(name, parent_id) VALUES(?, ?)`, f.Name, parentID)
	if err != nil {
		return fmt.Errorf("insert folder %q: %w", f.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("folder id: %w", err)
	}

	for _, b := range f.Bookmarks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bookmarks(url, title, add_date, last_modified, source_browser, category, folder_id)
			 VALUES(?, ?, ?, ?, ?, ?, ?)`,
			b.URL, b.Title, b.AddDate, b.LastModified, string(b.SourceBrowser), b.Category, id)
		if err != nil {
			return fmt.Errorf("insert bookmark %q: %w", b.URL, err)
		}
	}

	for _, sub := range f.Subfolders {
		if err := insertFolder(ctx, tx, sub, &id); err != nil {
			return err
		}
	}
	return nil
}

// Bookmarks returns every stored bookmark, flat, in insertion order.
func (s *Store) Bookmarks(ctx context.Context) ([]bookmark.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, title, add_date, last_modified, source_browser, category FROM bookmarks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var out []bookmark.Bookmark
	for rows.Next() {
		var b bookmark.Bookmark
		var source string
		if err := rows.Scan(&b.URL, &b.Title, &b.AddDate, &b.LastModified, &source, &b.Category); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.SourceBrowser = bookmark.SourceBrowser(source)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Tree reloads the stored folder hierarchy. An empty store yields an
// empty synthetic root.
func (s *Store) Tree(ctx context.Context) (*bookmark.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, parent_id FROM folders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	type rec struct {
		folder   *bookmark.Folder
		parentID *int64
	}
	byID := make(map[int64]rec)
	var order []int64
	for rows.Next() {
		var id int64
		var name string
		var parentID *int64
		if err := rows.Scan(&id, &name, &parentID); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		byID[id] = rec{folder: &bookmark.Folder{Name: name}, parentID: parentID}
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var root *bookmark.Folder
	for _, id := range order {
		r := byID[id]
		if r.parentID == nil {
			if root == nil {
				root = r.folder
			}
			continue
		}
		if parent, ok := byID[*r.parentID]; ok {
			parent.folder.Subfolders = append(parent.folder.Subfolders, r.folder)
		}
	}
	if root == nil {
		return bookmark.NewRoot(), nil
	}

	brows, err := s.db.QueryContext(ctx,
		`SELECT url, title, add_date, last_modified, source_browser, category, folder_id FROM bookmarks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer brows.Close()

	for brows.Next() {
		var b bookmark.Bookmark
		var source string
		var folderID int64
		if err := brows.Scan(&b.URL, &b.Title, &b.AddDate, &b.LastModified, &source, &b.Category, &folderID); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.SourceBrowser = bookmark.SourceBrowser(source)
		if r, ok := byID[folderID]; ok {
			r.folder.Bookmarks = append(r.folder.Bookmarks, b)
		}
	}
	return root, brows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
