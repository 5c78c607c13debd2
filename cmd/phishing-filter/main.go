package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/di"
	"github.com/mikey/phishing-analyzer/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(logger *zap.Logger, emailFilter ports.EmailFilter) error {
	defer logger.Sync()

	// Start the filter
	if err := emailFilter.Start(); err != nil {
		logger.Fatal("Failed to start filter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the filter
	if err := emailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
