package core

// Verdict is the three-level classification of an analyzed email.
type Verdict string

const (
	VerdictSafe       Verdict = "SAFE"
	VerdictSuspicious Verdict = "SUSPICIOUS"
	VerdictMalicious  Verdict = "MALICIOUS"
)

// Attachment summarizes one email attachment.
type Attachment struct {
	Filename string
	Size     int
}

// Anchor is one <a href> link extracted from the HTML body.
type Anchor struct {
	Href string
	Text string
}

// ParsedEmail is a fully parsed email message. All string fields default
// to the empty string, never to a missing value, so downstream code
// never branches on presence.
type ParsedEmail struct {
	From       string
	To         string
	Subject    string
	Date       string
	ReturnPath string

	PlainBody string
	HTMLBody  string

	Attachments []Attachment
	Anchors     []Anchor

	// ReceivedIPs holds the deduplicated IPv4 addresses found in the
	// Received header chain.
	ReceivedIPs []string

	// FlaggedIPs is populated by the caller from a reputation source
	// before analysis. Empty when no reputation source is wired.
	FlaggedIPs []string
}

// FeatureBag is the normalized feature summary shared by the heuristic
// rules and the classifier. It is built once per analysis and never
// mutated afterwards.
type FeatureBag struct {
	EmailLength        int
	NumLinks           int
	NumSuspiciousWords int
	NumAttachments     int

	// SuspiciousWords lists matched subject-scope vocabulary terms,
	// sorted. Note the asymmetry with NumSuspiciousWords, which counts
	// distinct hits over subject and body.
	SuspiciousWords []string
}

// HeuristicFinding is the outcome of one triggered heuristic rule.
type HeuristicFinding struct {
	ScoreDelta int
	Reason     string
}

// Prediction is a classifier output for one email.
type Prediction struct {
	// Probability of the malicious class, in [0, 1].
	Probability float64
	// Label is Probability compared against the model's decision
	// threshold. Fusion consumes the probability, not the label.
	Label bool
}

// AnalysisResult is the final output of one analysis.
type AnalysisResult struct {
	Score   int
	Verdict Verdict
	Reasons []string

	SuspiciousWords []string
	SuspiciousLinks []string
}
