package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pevans/newsdigest/article"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoCSVFound is returned when an input CSV file does not exist.
var ErrNoCSVFound = errors.New("no CSV file found")

// CSVStore keeps records in a UTF-8 CSV file with a byte order mark and a
// header row. Columns are matched by header name on read, so reordered or
// extra columns are tolerated.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store backed by the file at path. The file need not
// exist yet.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Load returns the stored records, or an empty set when the file does not
// exist.
func (s *CSVStore) Load() ([]article.Record, error) {
	records, err := ReadCSV(s.path)
	if errors.Is(err, ErrNoCSVFound) {
		return []article.Record{}, nil
	}
	return records, err
}

// Save replaces the file with records.
func (s *CSVStore) Save(records []article.Record) error {
	return WriteCSV(s.path, records)
}

// ReadCSV reads article records from path. A missing file is reported as
// ErrNoCSVFound.
func ReadCSV(path string) ([]article.Record, error) {
	index, rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]article.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordFromRow(index, row))
	}
	return records, nil
}

// WriteCSV writes records to path with the Columns header.
func WriteCSV(path string, records []article.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}
	return writeRows(path, Columns, rows)
}

// ReadSummarizedCSV reads summarized records from path. Files without a
// summary column yield empty summaries.
func ReadSummarizedCSV(path string) ([]article.Summarized, error) {
	index, rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	summarized := make([]article.Summarized, 0, len(rows))
	for _, row := range rows {
		summarized = append(summarized, article.Summarized{
			Record:  recordFromRow(index, row),
			Summary: field(index, row, SummaryColumn),
		})
	}
	return summarized, nil
}

// WriteSummarizedCSV writes summarized records to path with the Columns
// header followed by the summary column.
func WriteSummarizedCSV(path string, summarized []article.Summarized) error {
	header := append(append([]string{}, Columns...), SummaryColumn)

	rows := make([][]string, 0, len(summarized))
	for _, s := range summarized {
		rows = append(rows, append(recordRow(s.Record), s.Summary))
	}
	return writeRows(path, header, rows)
}

func recordRow(r article.Record) []string {
	return []string{
		r.Title,
		r.ArticleID,
		r.Content,
		r.URL,
		r.Author,
		r.DatePublished,
		r.Source.String(),
	}
}

func recordFromRow(index map[string]int, row []string) article.Record {
	return article.Record{
		Title:         field(index, row, "title"),
		ArticleID:     field(index, row, "article_id"),
		Content:       field(index, row, "content"),
		URL:           field(index, row, "url"),
		Author:        field(index, row, "author"),
		DatePublished: field(index, row, "date_published"),
		Source:        article.Source(field(index, row, "source")),
	}
}

// field returns the named cell, or "" when the column is absent.
func field(index map[string]int, row []string, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// readRows reads a CSV file into a header index and its data rows. A
// leading byte order mark is stripped. An empty file has no rows.
func readRows(path string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoCSVFound, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return map[string]int{}, [][]string{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}
	if rows == nil {
		rows = [][]string{}
	}

	return index, rows, nil
}

// writeRows writes header and rows to path with a byte order mark. The file
// is written beside path and renamed into place.
func writeRows(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	encoder := transform.NewWriter(tmp, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(encoder)

	if err := writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	if err := encoder.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode CSV file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace CSV file: %w", err)
	}

	return nil
}
