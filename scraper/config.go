package scraper

// Selectors defines where a source keeps each article field in its markup.
type Selectors struct {
	List    ListConfig    `json:"list_config"`
	Article ArticleConfig `json:"article_config"`
}

// ListConfig defines how to discover article links on a listing page.
type ListConfig struct {
	ArticleSelector string `json:"article_selector"`
	// Attribute holding the article URL on each matched element
	LinkAttr string `json:"link_attr,omitempty"`
}

// ArticleConfig defines how to extract fields from an article page. Each
// selector names the container whose absence is a structural failure.
type ArticleConfig struct {
	TitleSelector     string `json:"title_selector"`
	ContentSelector   string `json:"content_selector"`
	ParagraphSelector string `json:"paragraph_selector"` // Within the content container
	AuthorSelector    string `json:"author_selector"`
	DateSelector      string `json:"date_selector"`
}

// TechCrunchSelectors locate fields on techcrunch.com pages.
var TechCrunchSelectors = Selectors{
	List: ListConfig{
		ArticleSelector: "a.post-block__title__link",
		LinkAttr:        "data-mrf-link",
	},
	Article: ArticleConfig{
		TitleSelector:     "h1.article__title",
		ContentSelector:   "div.article-content",
		ParagraphSelector: "p",
		AuthorSelector:    "span.river-byline__authors",
		DateSelector:      "time.full-date-time",
	},
}

// GoBlogSelectors locate fields on go.dev/blog pages. The listing is an
// Atom feed, so no list selector applies.
var GoBlogSelectors = Selectors{
	Article: ArticleConfig{
		TitleSelector:     ".Article h1:not(.small)",
		ContentSelector:   ".Article",
		ParagraphSelector: "p:not(.author)",
		AuthorSelector:    ".Article p.author",
		DateSelector:      ".Article p.author",
	},
}
