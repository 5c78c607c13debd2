package factory

import (
	"github.com/mikey/phishing-analyzer/internal/config"
	"github.com/mikey/phishing-analyzer/internal/core"
	"github.com/mikey/phishing-analyzer/internal/features"
	"github.com/mikey/phishing-analyzer/internal/heuristics"
	"github.com/mikey/phishing-analyzer/internal/reputation"
	"go.uber.org/zap"
)

// AnalyzerFactory creates the analysis pipeline components
type AnalyzerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config, logger *zap.Logger) *AnalyzerFactory {
	return &AnalyzerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateExtractor creates the feature extractor from the configured
// vocabulary sets
func (f *AnalyzerFactory) CreateExtractor() *features.Extractor {
	analysisCfg := f.cfg.GetAnalysis()
	return features.NewExtractor(features.Config{
		Vocabulary:        analysisCfg.Vocabulary,
		SubjectVocabulary: analysisCfg.SubjectVocabulary,
	})
}

// CreateRuleEngine creates the heuristic rule engine from the configured
// TLD and extension sets
func (f *AnalyzerFactory) CreateRuleEngine() *heuristics.Engine {
	analysisCfg := f.cfg.GetAnalysis()
	return heuristics.NewEngine(heuristics.Config{
		SuspiciousTLDs:       analysisCfg.SuspiciousTLDs,
		AttachmentExtensions: analysisCfg.AttachmentExtensions,
	}, f.logger)
}

// CreateReputationChecker creates the static IP reputation checker
func (f *AnalyzerFactory) CreateReputationChecker() *reputation.Checker {
	return reputation.NewChecker(f.cfg.GetReputation().FlaggedIPs, f.logger)
}

// VerdictThresholds returns the configured verdict cutoffs
func (f *AnalyzerFactory) VerdictThresholds() core.VerdictThresholds {
	verdictCfg := f.cfg.GetVerdict()
	return core.VerdictThresholds{
		Malicious:  verdictCfg.MaliciousThreshold,
		Suspicious: verdictCfg.SuspiciousThreshold,
	}
}

// CreateAnalyzerService assembles the full analyzer service
func (f *AnalyzerFactory) CreateAnalyzerService(classifier core.Classifier) *core.AnalyzerService {
	return core.NewAnalyzerService(
		f.CreateExtractor(),
		f.CreateRuleEngine(),
		classifier,
		f.VerdictThresholds(),
		f.logger,
	)
}
