package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/newsdigest/article"
)

// SQLiteStore keeps records in an SQLite articles table. Insertion order is
// kept by an autoincrement sequence column.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the articles table if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		article_id TEXT,
		content TEXT NOT NULL,
		url TEXT NOT NULL,
		author TEXT NOT NULL,
		date_published TEXT,
		source TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_articles_article_id ON articles(article_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns every stored record in insertion order.
func (s *SQLiteStore) Load() ([]article.Record, error) {
	rows, err := s.db.Query(`
		SELECT title, article_id, content, url, author, date_published, source
		FROM articles
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	records := []article.Record{}
	for rows.Next() {
		var r article.Record
		var articleID, datePublished sql.NullString
		var source string

		err := rows.Scan(&r.Title, &articleID, &r.Content, &r.URL, &r.Author, &datePublished, &source)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		r.ArticleID = articleID.String
		r.DatePublished = datePublished.String
		r.Source = article.Source(source)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}

	return records, nil
}

// Save replaces the table content with records in a single transaction.
// Empty ids and dates are stored as NULL.
func (s *SQLiteStore) Save(records []article.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return fmt.Errorf("failed to clear articles: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO articles (title, article_id, content, url, author, date_published, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.Title,
			nullString(r.ArticleID),
			r.Content,
			r.URL,
			r.Author,
			nullString(r.DatePublished),
			r.Source.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert article %q: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
