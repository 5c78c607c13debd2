// Package heuristics implements the rule-based scoring engine.
package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/core"
)

// Rule score deltas. Each rule is additive and independent; the sum is
// clamped later, during verdict fusion.
const (
	scoreDomainMismatch  = 30
	scoreAnchorMismatch  = 25
	scoreSuspiciousTLD   = 20
	scoreSuspiciousWords = 15
	scoreBadAttachment   = 40
	scoreSenderTLD       = 20
	scoreFlaggedIPs      = 40
)

// domainTokenPattern finds domain-like tokens in anchor text: word
// characters and dots followed by a top-level segment of 2+ letters.
var domainTokenPattern = regexp.MustCompile(`[\w.-]+\.[a-z]{2,}`)

// Config holds the tunable rule inputs.
type Config struct {
	// SuspiciousTLDs are uncommon top-level domains checked against
	// link hrefs and the sender domain.
	SuspiciousTLDs []string
	// AttachmentExtensions are filename suffixes flagged as dangerous.
	AttachmentExtensions []string
}

// DefaultConfig returns the standard TLD and extension sets.
func DefaultConfig() Config {
	return Config{
		SuspiciousTLDs:       []string{".ru", ".xyz", ".top", ".club"},
		AttachmentExtensions: []string{".exe", ".js", ".bat", ".scr", ".ps1"},
	}
}

// Engine evaluates the fixed heuristic rule set. It is stateless and
// safe for concurrent use.
type Engine struct {
	suspiciousTLDs       []string
	attachmentExtensions []string
	logger               *zap.Logger
}

// NewEngine creates a rule engine with the given config. The logger may
// be nil.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		suspiciousTLDs:       normalizeSuffixes(cfg.SuspiciousTLDs),
		attachmentExtensions: normalizeSuffixes(cfg.AttachmentExtensions),
		logger:               logger,
	}
}

// Evaluate runs every rule in fixed order and returns the unclamped
// score sum, one finding per triggered rule instance, and the flagged
// link hrefs deduplicated in first-occurrence order. It is deterministic
// and never fails; absent fields are treated as absent signal.
func (e *Engine) Evaluate(email *core.ParsedEmail, features *core.FeatureBag) (int, []core.HeuristicFinding, []string) {
	score := 0
	var findings []core.HeuristicFinding
	var suspiciousLinks []string

	add := func(delta int, reason string) {
		score += delta
		findings = append(findings, core.HeuristicFinding{ScoreDelta: delta, Reason: reason})
	}

	// 1. From vs Return-Path domain mismatch.
	fromDomain := ExtractDomain(email.From)
	returnDomain := ExtractDomain(email.ReturnPath)
	if fromDomain != "" && returnDomain != "" && !strings.EqualFold(fromDomain, returnDomain) {
		add(scoreDomainMismatch, fmt.Sprintf("From domain (%s) != Return-Path (%s)", fromDomain, returnDomain))
	}

	// 2. Anchor text looks like a domain but the href points elsewhere.
	for _, a := range email.Anchors {
		if a.Href == "" || a.Text == "" {
			continue
		}
		token := domainTokenPattern.FindString(strings.ToLower(a.Text))
		if token == "" {
			continue
		}
		if !strings.Contains(a.Href, ExtractDomain(token)) {
			add(scoreAnchorMismatch, fmt.Sprintf("Anchor text/domain doesn't match href (%s -> %s)", a.Text, a.Href))
			suspiciousLinks = append(suspiciousLinks, a.Href)
		}
	}

	// 3. Link href under an uncommon TLD. The TLD is checked against
	// the href's host so that paths and queries don't mask it.
	for _, a := range email.Anchors {
		if tld := matchSuffix(ExtractDomain(a.Href), e.suspiciousTLDs); tld != "" {
			add(scoreSuspiciousTLD, fmt.Sprintf("Link uses uncommon TLD (%s): %s", tld, a.Href))
			suspiciousLinks = append(suspiciousLinks, a.Href)
		}
	}

	// 4. Suspicious vocabulary present. Flat bonus regardless of how
	// many terms matched; the reason lists the subject-scope terms only.
	if features.NumSuspiciousWords > 0 {
		add(scoreSuspiciousWords, "Urgency/suspicious words found: "+strings.Join(features.SuspiciousWords, ", "))
	}

	// 5. Dangerous attachment extensions.
	for _, att := range email.Attachments {
		name := strings.ToLower(att.Filename)
		if matchSuffix(name, e.attachmentExtensions) != "" {
			add(scoreBadAttachment, fmt.Sprintf("Suspicious attachment type: %s", name))
		}
	}

	// 6. Sender domain under an uncommon TLD.
	if tld := matchSuffix(fromDomain, e.suspiciousTLDs); tld != "" {
		add(scoreSenderTLD, "Sender domain uses uncommon TLD: "+fromDomain)
	}

	// 7. Flagged sending IPs, resolved by the caller; inert when no
	// reputation source is wired.
	if len(email.FlaggedIPs) > 0 {
		add(scoreFlaggedIPs, "Sending IPs flagged: "+strings.Join(email.FlaggedIPs, ", "))
	}

	if e.logger != nil {
		e.logger.Debug("Heuristic evaluation complete",
			zap.Int("score", score),
			zap.Int("findings", len(findings)))
	}

	return score, findings, dedupeLinks(suspiciousLinks)
}

// matchSuffix returns the first suffix s ends with, or "".
func matchSuffix(s string, suffixes []string) string {
	s = strings.ToLower(s)
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return suffix
		}
	}
	return ""
}

func dedupeLinks(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	deduped := links[:0]
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		deduped = append(deduped, l)
	}
	return deduped
}

func normalizeSuffixes(suffixes []string) []string {
	normalized := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		normalized = append(normalized, s)
	}
	return normalized
}
