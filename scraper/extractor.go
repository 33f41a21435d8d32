package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/logger"
)

// Page is a fetched page: its raw markup and the document parsed from it.
type Page struct {
	URL    string
	Markup string
	Doc    *goquery.Document
}

// NewPage parses markup into a queryable document.
func NewPage(url, markup string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{
		URL:    url,
		Markup: markup,
		Doc:    doc,
	}, nil
}

// Extractor translates one source site's pages into article fields.
//
// Title, Author and Content fail with the matching article.ErrNoArticle*
// condition when their container is absent. Date fails only when its
// element is absent; malformed date text yields "". ID never fails and
// yields "" for a URL it cannot derive an id from.
type Extractor interface {
	Source() article.Source
	ListingURL() string
	// Render reports whether pages need scripts executed before extraction
	Render() bool
	ArticleURLs(listing *Page) []string
	Title(doc *goquery.Document, url string) (string, error)
	Date(doc *goquery.Document, url string) (string, error)
	Author(doc *goquery.Document, url string) (string, error)
	Content(doc *goquery.Document, url string) (string, error)
	ID(url string) string
}

// Registry maps each source to its extractor.
type Registry struct {
	extractors map[article.Source]Extractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[article.Source]Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor, replacing any registered for the same source.
func (r *Registry) Register(e Extractor) {
	r.extractors[e.Source()] = e
}

// Lookup returns the extractor for source.
func (r *Registry) Lookup(source article.Source) (Extractor, error) {
	e, ok := r.extractors[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", article.ErrNoArticleSourceMatched, source)
	}
	return e, nil
}

// DefaultRegistry returns a registry with every built-in source.
func DefaultRegistry(log logger.Logger) *Registry {
	return NewRegistry(NewTechCrunch(log), NewGoBlog(log))
}

// selectorExtractor implements the field extractions that only need a
// container lookup. Source variants embed it and add their own listing,
// date and id handling.
type selectorExtractor struct {
	selectors Selectors
	log       logger.Logger
}

func newSelectorExtractor(selectors Selectors, log logger.Logger) selectorExtractor {
	if log == nil {
		log = logger.NewNop()
	}
	return selectorExtractor{selectors: selectors, log: log}
}

func (e selectorExtractor) Title(doc *goquery.Document, url string) (string, error) {
	sel := doc.Find(e.selectors.Article.TitleSelector).First()
	if sel.Length() == 0 {
		e.log.Warn("Article title element not found", logger.String("url", url))
		return "", &article.ExtractError{URL: url, Err: article.ErrNoArticleTitleFound}
	}
	return strings.TrimSpace(sel.Text()), nil
}

func (e selectorExtractor) Author(doc *goquery.Document, url string) (string, error) {
	sel := doc.Find(e.selectors.Article.AuthorSelector).First()
	if sel.Length() == 0 {
		e.log.Warn("Article author element not found", logger.String("url", url))
		return "", &article.ExtractError{URL: url, Err: article.ErrNoArticleAuthorFound}
	}
	return strings.TrimSpace(sel.Text()), nil
}

// Content joins the text of every paragraph in the content container with
// newlines, in document order.
func (e selectorExtractor) Content(doc *goquery.Document, url string) (string, error) {
	container := doc.Find(e.selectors.Article.ContentSelector).First()
	if container.Length() == 0 {
		e.log.Warn("Article content element not found", logger.String("url", url))
		return "", &article.ExtractError{URL: url, Err: article.ErrNoArticleContentFound}
	}

	paragraphs := []string{}
	container.Find(e.selectors.Article.ParagraphSelector).Each(func(i int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})

	return strings.Join(paragraphs, "\n"), nil
}

// dateElement returns the date element, or the date-not-found condition.
func (e selectorExtractor) dateElement(doc *goquery.Document, url string) (*goquery.Selection, error) {
	sel := doc.Find(e.selectors.Article.DateSelector).First()
	if sel.Length() == 0 {
		e.log.Warn("Article date element not found", logger.String("url", url))
		return nil, &article.ExtractError{URL: url, Err: article.ErrNoArticleDateFound}
	}
	return sel, nil
}
