package article

import (
	"errors"
	"fmt"
	"strings"
)

// Named extraction and configuration conditions. Callers match them with
// errors.Is to tell which field failed.
var (
	ErrNoArticleTitleFound    = errors.New("no article title found")
	ErrNoArticleDateFound     = errors.New("no article date found")
	ErrNoArticleAuthorFound   = errors.New("no article author found")
	ErrNoArticleContentFound  = errors.New("no article content found")
	ErrNoArticleSourceMatched = errors.New("no article source matched")
)

// Source identifies which site an article was scraped from.
type Source string

const (
	SourceTechCrunch Source = "techcrunch"
	SourceGoBlog     Source = "goblog"
)

// Sources lists every known source in registration order.
var Sources = []Source{SourceTechCrunch, SourceGoBlog}

// ParseSource maps a source identifier onto the closed Source enumeration.
func ParseSource(s string) (Source, error) {
	normalized := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, source := range Sources {
		if source == normalized {
			return source, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoArticleSourceMatched, s)
}

func (s Source) String() string {
	return string(s)
}

// DisplayName returns the human-readable site name, used for default output
// file names.
func (s Source) DisplayName() string {
	switch s {
	case SourceTechCrunch:
		return "TechCrunch"
	case SourceGoBlog:
		return "GoBlog"
	default:
		return string(s)
	}
}

// Record is a single scraped article. Field order matches the persisted
// column order.
//
// An empty ArticleID means the id could not be derived from the URL, and an
// empty DatePublished means the date text was malformed. Both are stored as
// empty cells.
type Record struct {
	Title         string `json:"title"`
	ArticleID     string `json:"article_id"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	Author        string `json:"author"`
	DatePublished string `json:"date_published"`
	Source        Source `json:"source"`
}

// HasID reports whether the record carries an identity key.
func (r Record) HasID() bool {
	return r.ArticleID != ""
}

// Summarized is a record augmented with its extractive summary.
type Summarized struct {
	Record
	Summary string `json:"summary"`
}

// ExtractError describes a structural extraction failure for one article
// page.
type ExtractError struct {
	URL string
	Err error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.URL)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err is one of the missing-container
// conditions raised while extracting an article page.
func IsStructural(err error) bool {
	return errors.Is(err, ErrNoArticleTitleFound) ||
		errors.Is(err, ErrNoArticleDateFound) ||
		errors.Is(err, ErrNoArticleAuthorFound) ||
		errors.Is(err, ErrNoArticleContentFound)
}
