package main

import (
	"context"
	"flag"
	"os"
	"time"

	"dugout/internal/simulator"
)

// Default configuration constants.
const (
	defaultNumPlays          = 75
	defaultRetryRate         = 0.2
	defaultConflicts         = 5
	defaultDeletes           = 3
	defaultTimeout           = 30 * time.Second
	defaultSimulationTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		accountID = flag.String("account", "sim-account", "Account id for the simulated game")
		gameID    = flag.String("game", "", "Game id (default: a generated one)")
		numPlays  = flag.Int("plays", defaultNumPlays, "Number of plays to score")
		retryRate = flag.Float64("retry-rate", defaultRetryRate, "Fraction of plays replayed as duplicates")
		conflicts = flag.Int("conflicts", defaultConflicts, "Number of deliberate sequence collisions")
		deletes   = flag.Int("deletes", defaultDeletes, "Number of plays deleted after scoring")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for simulator output (default: simulation_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	if err := simulator.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSimulationTimeout)
	defer cancel()

	config := &simulator.Config{
		BaseURL:   *baseURL,
		AccountID: *accountID,
		GameID:    *gameID,
		NumPlays:  *numPlays,
		RetryRate: *retryRate,
		Conflicts: *conflicts,
		Deletes:   *deletes,
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if err := simulator.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
