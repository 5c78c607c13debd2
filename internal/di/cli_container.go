package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/adapters/filter"
	"github.com/mikey/phishing-analyzer/internal/config"
	"github.com/mikey/phishing-analyzer/internal/core"
	"github.com/mikey/phishing-analyzer/internal/factory"
	"github.com/mikey/phishing-analyzer/internal/logging"
	"github.com/mikey/phishing-analyzer/internal/reputation"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Model flags
	ModelPath string
	MetaPath  string

	// Verdict flags
	MaliciousThreshold  int
	SuspiciousThreshold int

	// Reputation flags
	FlaggedIPs string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Model flags
	flag.StringVar(&flags.ModelPath, "model", "", "Path to the exported model artifact (heuristics only if unset)")
	flag.StringVar(&flags.MetaPath, "model-meta", "", "Path to the model metadata JSON")

	// Verdict flags
	flag.IntVar(&flags.MaliciousThreshold, "malicious-threshold", 70, "Score cutoff for the MALICIOUS verdict")
	flag.IntVar(&flags.SuspiciousThreshold, "suspicious-threshold", 30, "Score cutoff for the SUSPICIOUS verdict")

	// Reputation flags
	flag.StringVar(&flags.FlaggedIPs, "flagged-ips", "", "Comma-separated list of flagged sending IPs")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input .eml file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags) (*config.Config, error) {
		if flags.ConfigFile != "" {
			return config.New()
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewAnalyzerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
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

	// Register CLI filter
	if err := container.Provide(func(service *core.AnalyzerService, checker *reputation.Checker, logger *zap.Logger, flags *CLIFlags) (*filter.CliFilter, error) {
		return filter.NewCliFilter(service, checker, logger, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("model.path", flags.ModelPath)
	v.Set("model.meta_path", flags.MetaPath)

	v.Set("verdict.malicious_threshold", flags.MaliciousThreshold)
	v.Set("verdict.suspicious_threshold", flags.SuspiciousThreshold)

	if flags.FlaggedIPs != "" {
		ips := strings.Split(flags.FlaggedIPs, ",")
		for i, ip := range ips {
			ips[i] = strings.TrimSpace(ip)
		}
		v.Set("reputation.flagged_ips", ips)
	} else {
		v.Set("reputation.flagged_ips", []string{})
	}

	v.Set("cli.verbose", flags.Verbose)

	return config.NewFromViper(v)
}
