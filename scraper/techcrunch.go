package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/logger"
)

const techCrunchListingURL = "https://techcrunch.com/"

// dateSeparator divides the time of day from the calendar date in
// TechCrunch bylines, as in "4:15 PM PDT • August 3, 2023".
const dateSeparator = "•"

// TechCrunch extracts articles from techcrunch.com. Its listing is
// populated by scripts, so pages are fetched rendered.
type TechCrunch struct {
	selectorExtractor
}

// NewTechCrunch creates the TechCrunch extractor.
func NewTechCrunch(log logger.Logger) *TechCrunch {
	return &TechCrunch{selectorExtractor: newSelectorExtractor(TechCrunchSelectors, log)}
}

func (t *TechCrunch) Source() article.Source {
	return article.SourceTechCrunch
}

func (t *TechCrunch) ListingURL() string {
	return techCrunchListingURL
}

func (t *TechCrunch) Render() bool {
	return true
}

// ArticleURLs returns the link attribute of every title anchor on the
// listing. Anchors without one are skipped.
func (t *TechCrunch) ArticleURLs(listing *Page) []string {
	urls := []string{}

	listing.Doc.Find(t.selectors.List.ArticleSelector).Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr(t.selectors.List.LinkAttr)
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			t.log.Warn("Article url not found",
				logger.String("listing", listing.URL),
				logger.Int("anchor", i),
			)
			return
		}
		urls = append(urls, href)
	})

	return urls
}

// Date returns the calendar date following the last separator in the date
// element. A date element whose text ends in a separator is malformed.
func (t *TechCrunch) Date(doc *goquery.Document, url string) (string, error) {
	sel, err := t.dateElement(doc, url)
	if err != nil {
		return "", err
	}

	parts := strings.Split(sel.Text(), dateSeparator)
	date := strings.TrimSpace(parts[len(parts)-1])
	if date == "" {
		t.log.Warn("Date format is invalid", logger.String("url", url))
		return "", nil
	}

	return date, nil
}

// ID returns the second-to-last slash-separated segment of url, which is
// the article slug for TechCrunch's trailing-slash URLs.
func (t *TechCrunch) ID(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" {
		t.log.Warn("URL format is invalid", logger.String("url", url))
		return ""
	}
	return parts[len(parts)-2]
}
