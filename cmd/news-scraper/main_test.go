package main

import (
	"testing"

	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/storage"
	"github.com/stretchr/testify/assert"
)

// TestDefaultOutput verifies the store is named after the source
func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		source   article.Source
		kind     string
		expected string
	}{
		{article.SourceTechCrunch, storage.KindCSV, "TechCrunch_latest_news.csv"},
		{article.SourceTechCrunch, "", "TechCrunch_latest_news.csv"},
		{article.SourceGoBlog, storage.KindSQLite, article.SourceGoBlog.DisplayName() + "_latest_news.db"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, defaultOutput(tt.source, tt.kind))
	}
}

// TestRootCommand_RejectsUnknownSource verifies an unknown source fails before any fetch
func TestRootCommand_RejectsUnknownSource(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--source", "reuters", "--config", t.TempDir() + "/missing.yaml"})

	err := cmd.Execute()

	assert.ErrorIs(t, err, article.ErrNoArticleSourceMatched)
}
