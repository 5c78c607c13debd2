package di

import (
	"go.uber.org/dig"

	"github.com/mikey/phishing-analyzer/internal/config"
	"github.com/mikey/phishing-analyzer/internal/core"
	"github.com/mikey/phishing-analyzer/internal/factory"
	"github.com/mikey/phishing-analyzer/internal/logging"
	"github.com/mikey/phishing-analyzer/internal/ports"
	"github.com/mikey/phishing-analyzer/internal/reputation"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewAnalyzerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register classifier (nil when no model is configured)
	if err := container.Provide(func(f *factory.ClassifierFactory) core.Classifier {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register reputation checker
	if err := container.Provide(func(f *factory.AnalyzerFactory) *reputation.Checker {
		return f.CreateReputationChecker()
	}); err != nil {
		return nil, err
	}

	// Register analyzer service
	if err := container.Provide(func(f *factory.AnalyzerFactory, classifier core.Classifier) *core.AnalyzerService {
		return f.CreateAnalyzerService(classifier)
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
