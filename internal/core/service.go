package core

import (
	"context"

	"go.uber.org/zap"
)

// VerdictThresholds holds the score cutoffs for the three verdict bands.
// Both bounds are inclusive at the lower end of their band.
type VerdictThresholds struct {
	Malicious  int
	Suspicious int
}

// DefaultVerdictThresholds are the standard cutoffs: >= 70 MALICIOUS,
// >= 30 SUSPICIOUS, below that SAFE.
var DefaultVerdictThresholds = VerdictThresholds{Malicious: 70, Suspicious: 30}

// VerdictForScore maps a final score onto a verdict.
func (t VerdictThresholds) VerdictForScore(score int) Verdict {
	switch {
	case score >= t.Malicious:
		return VerdictMalicious
	case score >= t.Suspicious:
		return VerdictSuspicious
	default:
		return VerdictSafe
	}
}

// AnalyzerService is the core analysis pipeline: feature extraction,
// heuristic evaluation, optional classification, and verdict fusion.
type AnalyzerService struct {
	extractor  FeatureExtractor
	rules      RuleEngine
	classifier Classifier
	thresholds VerdictThresholds
	logger     *zap.Logger
}

// NewAnalyzerService creates a new analyzer service. The classifier may
// be nil when no model is configured.
func NewAnalyzerService(
	extractor FeatureExtractor,
	rules RuleEngine,
	classifier Classifier,
	thresholds VerdictThresholds,
	logger *zap.Logger,
) *AnalyzerService {
	return &AnalyzerService{
		extractor:  extractor,
		rules:      rules,
		classifier: classifier,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Analyze scores a parsed email and fuses the heuristic and classifier
// signals into one result.
//
// When the classifier produces a prediction, its probability alone
// determines the final score; the heuristic score is discarded and only
// its findings survive as reasons. Without a classifier the clamped
// heuristic score is the final score.
func (s *AnalyzerService) Analyze(ctx context.Context, email *ParsedEmail) (*AnalysisResult, error) {
	features := s.extractor.Extract(email)
	heurScore, findings, suspiciousLinks := s.rules.Evaluate(email, features)

	reasons := make([]string, 0, len(findings))
	for _, f := range findings {
		reasons = append(reasons, f.Reason)
	}

	score := clampScore(heurScore)
	if s.classifier != nil {
		prediction, err := s.classifier.Predict(ctx, email, features)
		if err != nil {
			return nil, err
		}
		if prediction != nil {
			score = roundScore(prediction.Probability)
			s.logger.Debug("Classifier prediction",
				zap.Float64("probability", prediction.Probability),
				zap.Bool("label", prediction.Label),
				zap.Int("discarded_heuristic_score", heurScore))
		} else {
			s.logger.Warn("No classifier model available, falling back to heuristics")
		}
	}

	result := &AnalysisResult{
		Score:           score,
		Verdict:         s.thresholds.VerdictForScore(score),
		Reasons:         reasons,
		SuspiciousWords: features.SuspiciousWords,
		SuspiciousLinks: suspiciousLinks,
	}

	s.logger.Debug("Analysis complete",
		zap.String("from", email.From),
		zap.Int("score", result.Score),
		zap.String("verdict", string(result.Verdict)),
		zap.Int("reasons", len(result.Reasons)))

	return result, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func roundScore(probability float64) int {
	return clampScore(int(probability*100 + 0.5))
}
