// Package summarizer produces extractive summaries of article content by
// ranking sentences with LexRank.
package summarizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/logger"
)

// Config holds configuration for summarization.
type Config struct {
	// Upper bound on sentences per summary
	MaxSentences int
	Log          logger.Logger
}

// DefaultConfig returns the default summarizer configuration.
func DefaultConfig() Config {
	return Config{MaxSentences: 3}
}

// Summarizer produces bounded-length extractive summaries.
type Summarizer struct {
	tokenizer    *sentences.DefaultSentenceTokenizer
	maxSentences int
	log          logger.Logger
}

// New creates a summarizer with the English sentence tokenizer. Failing to
// load the tokenizer's training data is an error.
func New(config Config) (*Summarizer, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}

	if config.MaxSentences <= 0 {
		config.MaxSentences = DefaultConfig().MaxSentences
	}
	if config.Log == nil {
		config.Log = logger.NewNop()
	}

	return &Summarizer{
		tokenizer:    tokenizer,
		maxSentences: config.MaxSentences,
		log:          config.Log,
	}, nil
}

// Summarize returns up to the configured number of the most central
// sentences of text, in their original order, joined by single spaces.
// Text without sentences yields "".
func (s *Summarizer) Summarize(text string) string {
	sents := s.splitSentences(text)
	if len(sents) == 0 {
		return ""
	}

	sentenceWords := make([][]string, len(sents))
	for i, sent := range sents {
		sentenceWords[i] = sentenceTerms(sent)
	}

	picked := topSentences(lexRank(sentenceWords), s.maxSentences)

	summary := make([]string, 0, len(picked))
	for _, i := range picked {
		summary = append(summary, sents[i])
	}
	return strings.Join(summary, " ")
}

// SummarizeRecords returns a copy of each record with its summary. The
// input records are not modified.
func (s *Summarizer) SummarizeRecords(records []article.Record) []article.Summarized {
	summarized := make([]article.Summarized, 0, len(records))
	for _, r := range records {
		summary := s.Summarize(r.Content)
		if summary == "" {
			s.log.Debug("Article has no summarizable content",
				logger.String("article_id", r.ArticleID),
				logger.String("url", r.URL),
			)
		}
		summarized = append(summarized, article.Summarized{
			Record:  r,
			Summary: summary,
		})
	}
	return summarized
}

// splitSentences splits text into sentences. Blank lines separate paragraphs,
// lines within a paragraph are joined, and lines written entirely in upper
// case are headings and are left out.
func (s *Summarizer) splitSentences(text string) []string {
	var out []string
	var paragraph []string

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		for _, sent := range s.tokenizer.Tokenize(strings.Join(paragraph, " ")) {
			if t := strings.TrimSpace(sent.Text); t != "" {
				out = append(out, t)
			}
		}
		paragraph = paragraph[:0]
	}

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case isHeading(line):
			flush()
		default:
			paragraph = append(paragraph, line)
		}
	}
	flush()

	return out
}

// isHeading reports whether line has cased letters and all of them are
// upper case.
func isHeading(line string) bool {
	cased := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// sentenceTerms returns the lower-cased words of a sentence. Punctuation,
// numbers and other tokens that are not words are dropped.
func sentenceTerms(sentence string) []string {
	terms := []string{}
	tokens := words.FromString(sentence)
	for tokens.Next() {
		token := tokens.Value()
		if isWord(token) {
			terms = append(terms, strings.ToLower(token))
		}
	}
	return terms
}

// isWord reports whether token starts with a letter and holds only letters,
// apostrophes and hyphens.
func isWord(token string) bool {
	for i, r := range token {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !unicode.IsLetter(r) && r != '\'' && r != '’' && r != '-' {
			return false
		}
	}
	return token != ""
}
