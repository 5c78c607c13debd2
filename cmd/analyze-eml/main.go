package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/adapters/filter"
	"github.com/mikey/phishing-analyzer/internal/di"
	"github.com/mikey/phishing-analyzer/internal/parser"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(flags *di.CLIFlags, logger *zap.Logger, cliFilter *filter.CliFilter) error {
	defer logger.Sync()

	ctx := context.Background()

	if flags.InputFile != "" {
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
		_, err := cliFilter.ProcessFile(ctx, flags.InputFile)
		return err
	}

	logger.Info("Reading email from stdin")
	email, err := parser.ParseEML(os.Stdin)
	if err != nil {
		return err
	}
	_, err = cliFilter.ProcessEmail(ctx, email)
	return err
}
