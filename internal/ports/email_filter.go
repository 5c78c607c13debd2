package ports

import (
	"context"

	"github.com/mikey/phishing-analyzer/internal/core"
)

// EmailFilter defines the interface for email filtering
type EmailFilter interface {
	// ProcessEmail analyzes a parsed email and returns the result
	ProcessEmail(ctx context.Context, email *core.ParsedEmail) (*core.AnalysisResult, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
