package simulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"dugout/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulation_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the scoring simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Dugout Scoring Simulator
========================

Scores a full game against a running dugout service, replaying a share of
the mutations to exercise idempotent retries and provoking sequence
collisions, then verifies the event list the service reports.

Usage:
  go run cmd/simulate/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -account string
        Account id for the simulated game (default "sim-account")
  -game string
        Game id (default: a generated one)
  -plays int
        Number of plays to score (default 75)
  -retry-rate float
        Fraction of plays replayed as duplicates (default 0.2)
  -conflicts int
        Number of deliberate sequence collisions (default 5)
  -deletes int
        Number of plays deleted after scoring (default 3)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for simulator output (default: simulation_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/simulate/main.go

  # A long game with aggressive retries
  go run cmd/simulate/main.go -plays 200 -retry-rate 0.5

  # Score a specific game
  go run cmd/simulate/main.go -account club-17 -game game-2026-04-12
`)
}
