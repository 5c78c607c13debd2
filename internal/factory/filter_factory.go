package factory

import (
	"fmt"

	"github.com/mikey/phishing-analyzer/internal/adapters/filter"
	"github.com/mikey/phishing-analyzer/internal/config"
	"github.com/mikey/phishing-analyzer/internal/core"
	"github.com/mikey/phishing-analyzer/internal/ports"
	"github.com/mikey/phishing-analyzer/internal/reputation"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	service    *core.AnalyzerService
	reputation *reputation.Checker
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.AnalyzerService, reputation *reputation.Checker) *FilterFactory {
	return &FilterFactory{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		reputation: reputation,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.FilterType {
	case "smtp":
		return filter.NewSMTPFilter(
			f.service,
			f.reputation,
			f.logger,
			serverCfg.ListenAddress,
			serverCfg.BlockMalicious,
			serverCfg.VerdictHeader,
			serverCfg.ScoreHeader,
			serverCfg.ReasonHeader,
			serverCfg.PostfixAddress,
			serverCfg.PostfixPort,
			serverCfg.PostfixEnabled,
			serverCfg.SubjectPrefix,
			serverCfg.ModifySubject,
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.reputation,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", serverCfg.FilterType)
	}
}
