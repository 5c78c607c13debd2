// Package features builds the normalized feature bag shared by the
// heuristic rules and the classifier.
package features

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mikey/phishing-analyzer/internal/core"
)

// bareURLPattern matches URLs appearing directly in body text, outside
// of anchor tags.
var bareURLPattern = regexp.MustCompile(`https?://[^\s'"<>]+`)

// Config holds the vocabulary sets used during extraction. Both sets are
// matched case-insensitively.
type Config struct {
	// Vocabulary drives the distinct-hit count over subject and body.
	Vocabulary []string
	// SubjectVocabulary drives the exposed SuspiciousWords diagnostic,
	// which is restricted to terms found in the subject.
	SubjectVocabulary []string
}

// DefaultConfig returns the standard vocabulary sets.
func DefaultConfig() Config {
	return Config{
		Vocabulary: []string{
			"urgent", "verify", "password", "bank",
			"account", "confirm", "login", "click here",
		},
		SubjectVocabulary: []string{"urgent", "verify"},
	}
}

// Extractor derives a FeatureBag from a parsed email. It is stateless
// and safe for concurrent use.
type Extractor struct {
	vocabulary        []string
	subjectVocabulary []string
}

// NewExtractor creates an extractor with the given vocabulary config.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{
		vocabulary:        normalizeTerms(cfg.Vocabulary),
		subjectVocabulary: normalizeTerms(cfg.SubjectVocabulary),
	}
}

// Extract builds the feature bag for one email. It never fails: missing
// fields simply contribute empty or zero features.
func (e *Extractor) Extract(email *core.ParsedEmail) *core.FeatureBag {
	subject := strings.ToLower(email.Subject)
	text := subject + " " + strings.ToLower(email.PlainBody) + " " + strings.ToLower(email.HTMLBody)

	numSuspicious := 0
	for _, term := range e.vocabulary {
		if strings.Contains(text, term) {
			numSuspicious++
		}
	}

	subjectWords := make([]string, 0, len(e.subjectVocabulary))
	for _, term := range e.subjectVocabulary {
		if strings.Contains(subject, term) {
			subjectWords = append(subjectWords, term)
		}
	}
	sort.Strings(subjectWords)

	return &core.FeatureBag{
		EmailLength:        utf8.RuneCountInString(email.Subject) + utf8.RuneCountInString(email.PlainBody) + utf8.RuneCountInString(email.HTMLBody),
		NumLinks:           countLinks(email),
		NumSuspiciousWords: numSuspicious,
		NumAttachments:     len(email.Attachments),
		SuspiciousWords:    subjectWords,
	}
}

// countLinks counts anchors plus bare URLs found in the body text that
// were not already captured as an anchor href.
func countLinks(email *core.ParsedEmail) int {
	anchorHrefs := make(map[string]struct{}, len(email.Anchors))
	for _, a := range email.Anchors {
		anchorHrefs[a.Href] = struct{}{}
	}

	count := len(email.Anchors)
	for _, body := range []string{email.HTMLBody, email.PlainBody} {
		for _, match := range bareURLPattern.FindAllString(body, -1) {
			if _, ok := anchorHrefs[match]; !ok {
				count++
			}
		}
	}
	return count
}

func normalizeTerms(terms []string) []string {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	return normalized
}
