package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/core"
	"github.com/mikey/phishing-analyzer/internal/parser"
	"github.com/mikey/phishing-analyzer/internal/reputation"
)

// CliFilter implements a command-line interface for one-shot analysis
type CliFilter struct {
	service    *core.AnalyzerService
	reputation *reputation.Checker
	logger     *zap.Logger
	verbose    bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.AnalyzerService, reputation *reputation.Checker, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service:    service,
		reputation: reputation,
		logger:     logger,
		verbose:    verbose,
	}, nil
}

// ProcessEmail analyzes a parsed email and displays the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.ParsedEmail) (*core.AnalysisResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	email.FlaggedIPs = f.reputation.Flagged(email.ReceivedIPs)

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Attachments: %d\n", len(email.Attachments))
	fmt.Printf("Links: %d\n", len(email.Anchors))

	if f.verbose {
		preview := email.PlainBody
		if preview == "" {
			preview = email.HTMLBody
		}
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	startTime := time.Now()
	result, err := f.service.Analyze(ctx, email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	report := core.BuildReport(email, result)
	out, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	fmt.Printf("\n=== JSON Output ===\n")
	fmt.Printf("%s\n", out)

	f.logger.Debug("Analysis finished",
		zap.String("verdict", string(result.Verdict)),
		zap.Int("score", result.Score),
		zap.Duration("duration", duration))

	return result, nil
}

// ProcessFile parses and analyzes a single .eml file
func (f *CliFilter) ProcessFile(ctx context.Context, path string) (*core.AnalysisResult, error) {
	email, err := parser.ParseEMLFile(path)
	if err != nil {
		return nil, err
	}
	return f.ProcessEmail(ctx, email)
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
