package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/logger"
)

const goBlogListingURL = "https://go.dev/blog/feed.atom"

// GoBlog extracts posts from the Go Blog. Its listing is the blog's Atom
// feed and its pages are static.
type GoBlog struct {
	selectorExtractor
}

// NewGoBlog creates the Go Blog extractor.
func NewGoBlog(log logger.Logger) *GoBlog {
	return &GoBlog{selectorExtractor: newSelectorExtractor(GoBlogSelectors, log)}
}

func (g *GoBlog) Source() article.Source {
	return article.SourceGoBlog
}

func (g *GoBlog) ListingURL() string {
	return goBlogListingURL
}

func (g *GoBlog) Render() bool {
	return false
}

// ArticleURLs returns the link of every feed entry, in feed order.
func (g *GoBlog) ArticleURLs(listing *Page) []string {
	urls := []string{}

	feed, err := gofeed.NewParser().ParseString(listing.Markup)
	if err != nil {
		g.log.Warn("Failed to parse listing feed",
			logger.String("listing", listing.URL),
			logger.Error(err),
		)
		return urls
	}

	for i, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			g.log.Warn("Article url not found",
				logger.String("listing", listing.URL),
				logger.Int("entry", i),
			)
			continue
		}
		urls = append(urls, link)
	}

	return urls
}

// bylineLines returns the trimmed, non-empty text lines of the byline.
// Posts put the author on the first line and the date on the last.
func bylineLines(sel *goquery.Selection) []string {
	lines := []string{}
	for line := range strings.SplitSeq(sel.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (g *GoBlog) Author(doc *goquery.Document, url string) (string, error) {
	sel := doc.Find(g.selectors.Article.AuthorSelector).First()
	if sel.Length() == 0 {
		g.log.Warn("Article author element not found", logger.String("url", url))
		return "", &article.ExtractError{URL: url, Err: article.ErrNoArticleAuthorFound}
	}

	lines := bylineLines(sel)
	if len(lines) == 0 {
		g.log.Warn("Article author is empty", logger.String("url", url))
		return "", nil
	}
	return lines[0], nil
}

// Date returns the last byline line. A byline with a single line has no
// date and is malformed.
func (g *GoBlog) Date(doc *goquery.Document, url string) (string, error) {
	sel, err := g.dateElement(doc, url)
	if err != nil {
		return "", err
	}

	lines := bylineLines(sel)
	if len(lines) < 2 {
		g.log.Warn("Date format is invalid", logger.String("url", url))
		return "", nil
	}
	return lines[len(lines)-1], nil
}

// ID returns the last non-empty path segment of the post URL.
func (g *GoBlog) ID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		g.log.Warn("URL format is invalid", logger.String("url", rawURL), logger.Error(err))
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		g.log.Warn("URL format is invalid", logger.String("url", rawURL))
		return ""
	}
	return last
}
