package factory

import (
	"github.com/mikey/phishing-analyzer/internal/classifier"
	"github.com/mikey/phishing-analyzer/internal/config"
	"github.com/mikey/phishing-analyzer/internal/core"
	"go.uber.org/zap"
)

// ClassifierFactory creates classifier adapters
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a classifier adapter from the configuration.
// Returns nil when no model path is configured; analysis then runs on
// heuristics alone.
func (f *ClassifierFactory) CreateClassifier() core.Classifier {
	modelCfg := f.cfg.GetModel()
	if modelCfg.Path == "" {
		f.logger.Info("No model configured, heuristics-only analysis")
		return nil
	}
	return classifier.NewAdapter(modelCfg.Path, modelCfg.MetaPath, f.logger)
}
