package core

// Report is the JSON document emitted for one analyzed email.
type Report struct {
	Summary ReportSummary `json:"summary"`
	Details ReportDetails `json:"details"`
}

// ReportSummary carries the headline analysis outcome.
type ReportSummary struct {
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	Verdict Verdict  `json:"verdict"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// ReportDetails carries the supporting diagnostics.
type ReportDetails struct {
	SuspiciousWords []string           `json:"suspicious_words"`
	SuspiciousLinks []string           `json:"suspicious_links"`
	Attachments     []ReportAttachment `json:"attachments"`
	IPs             ReportIPs          `json:"ips"`
}

// ReportAttachment is an attachment summary; Filename is null for
// unnamed attachments.
type ReportAttachment struct {
	Filename *string `json:"filename"`
	Size     int     `json:"size"`
}

// ReportIPs groups the IP addresses seen in the routing headers.
type ReportIPs struct {
	All []string `json:"all"`
}

// BuildReport assembles the output document from a parsed email and its
// analysis result.
func BuildReport(email *ParsedEmail, result *AnalysisResult) *Report {
	attachments := make([]ReportAttachment, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		att := ReportAttachment{Size: a.Size}
		if a.Filename != "" {
			name := a.Filename
			att.Filename = &name
		}
		attachments = append(attachments, att)
	}

	return &Report{
		Summary: ReportSummary{
			From:    email.From,
			Subject: email.Subject,
			Verdict: result.Verdict,
			Score:   result.Score,
			Reasons: emptyIfNil(result.Reasons),
		},
		Details: ReportDetails{
			SuspiciousWords: emptyIfNil(result.SuspiciousWords),
			SuspiciousLinks: emptyIfNil(result.SuspiciousLinks),
			Attachments:     attachments,
			IPs:             ReportIPs{All: emptyIfNil(email.ReceivedIPs)},
		},
	}
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
