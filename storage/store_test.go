package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pevans/newsdigest/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: build a record with the given id
func record(id, title string) article.Record {
	return article.Record{
		Title:         title,
		ArticleID:     id,
		Content:       "Body of " + title,
		URL:           "https://techcrunch.com/2023/08/03/" + id + "/",
		Author:        "Jane Doe",
		DatePublished: "August 3, 2023",
		Source:        article.SourceTechCrunch,
	}
}

func ids(records []article.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ArticleID)
	}
	return out
}

// storeFactories creates each store kind in a temp dir so the same
// properties can be checked against both
var storeFactories = map[string]func(t *testing.T) RecordStore{
	"csv": func(t *testing.T) RecordStore {
		return NewCSVStore(filepath.Join(t.TempDir(), "articles.csv"))
	},
	"sqlite": func(t *testing.T) RecordStore {
		store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "articles.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	},
}

// TestMerge verifies existing records come first and known ids are dropped
func TestMerge(t *testing.T) {
	existing := []article.Record{record("a", "A"), record("b", "B")}
	incoming := []article.Record{record("b", "B changed"), record("c", "C")}

	merged := Merge(existing, incoming)

	assert.Equal(t, []string{"a", "b", "c"}, ids(merged))
	assert.Equal(t, "B", merged[1].Title, "first-seen version is retained")
}

// TestMerge_DuplicateInBatch verifies a batch repeating an id keeps its
// first record
func TestMerge_DuplicateInBatch(t *testing.T) {
	incoming := []article.Record{record("a", "first"), record("a", "second")}

	merged := Merge(nil, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, "first", merged[0].Title)
}

// TestMerge_NullIDs verifies records without ids are never duplicates
func TestMerge_NullIDs(t *testing.T) {
	existing := []article.Record{record("", "old without id")}
	incoming := []article.Record{record("", "new without id"), record("", "another")}

	merged := Merge(existing, incoming)

	assert.Len(t, merged, 3)
}

// TestMerge_DoesNotModifyExisting verifies the existing slice is untouched
func TestMerge_DoesNotModifyExisting(t *testing.T) {
	existing := make([]article.Record, 1, 4)
	existing[0] = record("a", "A")

	merged := Merge(existing, []article.Record{record("b", "B")})
	merged[0].Title = "changed"

	assert.Equal(t, "A", existing[0].Title)
}

// TestStores_LoadEmpty verifies a store without prior state loads empty
func TestStores_LoadEmpty(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			records, err := newStore(t).Load()
			require.NoError(t, err)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

// TestStores_UpdateUnion verifies update(A); update(B) stores the union of
// ids exactly once with A's version retained
func TestStores_UpdateUnion(t *testing.T) {
	a := []article.Record{record("one", "One"), record("two", "Two")}
	b := []article.Record{record("two", "Two again"), record("three", "Three")}

	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			added, err := Update(store, a)
			require.NoError(t, err)
			assert.Equal(t, 2, added)

			added, err = Update(store, b)
			require.NoError(t, err)
			assert.Equal(t, 1, added)

			records, err := store.Load()
			require.NoError(t, err)
			assert.Equal(t, []string{"one", "two", "three"}, ids(records))
			assert.Equal(t, "Two", records[1].Title)
			assert.Equal(t, a[0], records[0], "fields round trip unchanged")
		})
	}
}

// TestStores_UpdateIdempotent verifies repeating an update adds nothing
func TestStores_UpdateIdempotent(t *testing.T) {
	batch := []article.Record{record("one", "One")}

	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			_, err := Update(store, batch)
			require.NoError(t, err)
			added, err := Update(store, batch)
			require.NoError(t, err)
			assert.Equal(t, 0, added)

			records, err := store.Load()
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

// TestStores_NullFields verifies empty ids and dates persist as empty
func TestStores_NullFields(t *testing.T) {
	r := record("", "No id")
	r.DatePublished = ""

	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			_, err := Update(store, []article.Record{r, r})
			require.NoError(t, err)

			records, err := store.Load()
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Empty(t, records[0].ArticleID)
			assert.Empty(t, records[0].DatePublished)
		})
	}
}

// TestCSVStore_HeaderOnly verifies an empty save still writes every column
func TestCSVStore_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")
	store := NewCSVStore(path)

	require.NoError(t, store.Save([]article.Record{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ufefftitle,article_id,content,url,author,date_published,source\n", string(data))

	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestCSVStore_Encoding verifies the byte order mark and non-ASCII text
// survive a round trip
func TestCSVStore_Encoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")
	store := NewCSVStore(path)

	r := record("zurich", "Zürich startup raises €10M — “quoted”")
	r.Content = "Line one, with comma.\nLine two with \"quotes\"."
	require.NoError(t, store.Save([]article.Record{r}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "file starts with a BOM")
	assert.Equal(t, 1, bytes.Count(data, []byte{0xEF, 0xBB, 0xBF}))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, r, records[0])
}

// TestReadCSV_ColumnOrder verifies columns are matched by header name
func TestReadCSV_ColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")
	content := "source,url,article_id,title,extra,content,author,date_published\n" +
		"techcrunch,https://techcrunch.com/a/b/,b,Title,x,Body,Author,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, article.Record{
		Title:     "Title",
		ArticleID: "b",
		Content:   "Body",
		URL:       "https://techcrunch.com/a/b/",
		Author:    "Author",
		Source:    article.SourceTechCrunch,
	}, records[0])
}

// TestReadCSV_Missing verifies a missing input is a named condition
func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrNoCSVFound)
}

// TestReadCSV_EmptyFile verifies a zero-byte file reads as no records
func TestReadCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestSummarizedCSV verifies the summary column follows the record columns
func TestSummarizedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.csv")
	summarized := []article.Summarized{
		{Record: record("a", "A"), Summary: "Short summary."},
		{Record: record("b", "B"), Summary: ""},
	}

	require.NoError(t, WriteSummarizedCSV(path, summarized))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data,
		[]byte("\ufefftitle,article_id,content,url,author,date_published,source,summary\n")))

	loaded, err := ReadSummarizedCSV(path)
	require.NoError(t, err)
	assert.Equal(t, summarized, loaded)

	// The summarized file is still a readable record file
	records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(records))
}

// TestOpen verifies store selection by kind
func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, closeFn, err := Open(KindCSV, filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, store)
	assert.NoError(t, closeFn())

	store, closeFn, err = Open(KindSQLite, filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	assert.NoError(t, closeFn())

	_, _, err = Open("parquet", filepath.Join(dir, "a.parquet"))
	assert.ErrorIs(t, err, ErrUnknownStorage)
}
