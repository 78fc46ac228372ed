package simulator

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"

	"dugout/pkg/logger"
)

const (
	percentageMultiplier = 100.0
	retryRollDivisor     = 1000
)

// Run executes a complete simulated scoring session against a running
// service: score a game play by play, replay a share of the mutations as
// duplicates, provoke sequence collisions, delete a few plays, then verify
// the event list the service reports.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	if config.GameID == "" {
		config.GameID = "game-" + uuid.NewString()
	}

	logger.Get().Info(ctx, "starting scoring simulation",
		logger.String("baseURL", config.BaseURL),
		logger.String("accountID", config.AccountID),
		logger.String("gameID", config.GameID),
		logger.Int("plays", config.NumPlays),
		logger.Int("conflicts", config.Conflicts),
		logger.Int("deletes", config.Deletes))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	plays := generatePlays(ctx, config, stats)

	client := newHTTPClient(config.Timeout)
	mutationsURL := config.BaseURL + "/games/" + config.AccountID + "/" + config.GameID + "/mutations"
	eventsURL := config.BaseURL + "/games/" + config.AccountID + "/" + config.GameID + "/events"

	serverIDs, err := scorePlays(ctx, config, client, mutationsURL, plays, stats)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	if err := provokeConflicts(ctx, config, client, mutationsURL, plays, stats); err != nil {
		return fmt.Errorf("conflict probe failed: %w", err)
	}

	if err := deletePlays(ctx, config, client, mutationsURL, plays, stats); err != nil {
		return fmt.Errorf("delete pass failed: %w", err)
	}

	if err := verifyEventList(ctx, config, client, eventsURL, serverIDs, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// scorePlays submits each play as a create mutation, replaying a share of
// them to exercise idempotent retries. Returns the confirmed server id for
// each client event id.
func scorePlays(ctx context.Context, config *Config, client *HTTPClient, url string, plays []Play, stats *Stats) (map[string]string, error) {
	serverIDs := make(map[string]string, len(plays))

	for _, play := range plays {
		req := createRequest(play)

		status, confirmed, err := submitMutation(ctx, client, url, req)
		stats.MutationsSubmitted++
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK || confirmed == nil {
			stats.Failed++
			return nil, fmt.Errorf("play %d rejected with status %d", play.Sequence, status)
		}

		stats.Confirmed++
		serverIDs[play.ClientEventID] = confirmed.ServerEventID

		if config.Verbose {
			logger.Get().Debug(ctx, "play confirmed",
				logger.Int64("sequence", confirmed.Sequence),
				logger.String("notation", play.Notation),
				logger.String("serverID", confirmed.ServerEventID))
		}

		if !rollRetry(config.RetryRate) {
			continue
		}

		// Replay the identical mutation as a flaky network would.
		status, replayed, err := submitMutation(ctx, client, url, req)
		stats.MutationsSubmitted++
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK || replayed == nil {
			stats.Failed++
			logger.Get().Warn(ctx, "duplicate replay rejected",
				logger.Int64("sequence", play.Sequence),
				logger.Int("status", status))
			continue
		}
		if replayed.ServerEventID != confirmed.ServerEventID {
			stats.Failed++
			return nil, fmt.Errorf("replay of play %d minted a new server id", play.Sequence)
		}
		stats.DuplicatesReplayed++
	}

	logger.Get().Info(ctx, "scoring pass completed",
		logger.Int("confirmed", stats.Confirmed),
		logger.Int("duplicatesReplayed", stats.DuplicatesReplayed))
	return serverIDs, nil
}

// provokeConflicts submits fresh client event ids at occupied sequences
// and expects each to be rejected with 409.
func provokeConflicts(ctx context.Context, config *Config, client *HTTPClient, url string, plays []Play, stats *Stats) error {
	for i := 0; i < config.Conflicts && len(plays) > 0; i++ {
		target := plays[i%len(plays)]
		req := createRequest(Play{
			ClientEventID: uuid.NewString(),
			Sequence:      target.Sequence,
			Notation:      "WP",
			Description:   "wild pitch",
		})

		status, _, err := submitMutation(ctx, client, url, req)
		stats.MutationsSubmitted++
		if err != nil {
			return err
		}
		if status != http.StatusConflict {
			stats.Failed++
			return fmt.Errorf("collision at sequence %d returned status %d, want %d",
				target.Sequence, status, http.StatusConflict)
		}
		stats.ConflictsRejected++
	}

	logger.Get().Info(ctx, "conflict probe completed", logger.Int("rejected", stats.ConflictsRejected))
	return nil
}

// deletePlays removes the last plays of the game and expects the remaining
// sequence numbers to keep their gaps.
func deletePlays(ctx context.Context, config *Config, client *HTTPClient, url string, plays []Play, stats *Stats) error {
	n := config.Deletes
	if n > len(plays) {
		n = len(plays)
	}

	for i := 0; i < n; i++ {
		target := plays[len(plays)-1-i]
		req := mutationRequest{
			Type:          "delete",
			ClientEventID: target.ClientEventID,
			Audit:         audit(),
		}

		status, _, err := submitMutation(ctx, client, url, req)
		stats.MutationsSubmitted++
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			stats.Failed++
			return fmt.Errorf("delete of play %d returned status %d", target.Sequence, status)
		}
		stats.Deleted++
	}

	logger.Get().Info(ctx, "delete pass completed", logger.Int("deleted", stats.Deleted))
	return nil
}

// verifyEventList fetches the live event list and checks count, ordering
// and server id assignment.
func verifyEventList(ctx context.Context, config *Config, client *HTTPClient, url string, serverIDs map[string]string, stats *Stats) error {
	events, err := fetchEvents(ctx, client, url)
	if err != nil {
		return err
	}

	want := stats.Confirmed - stats.Deleted
	if len(events) != want {
		return fmt.Errorf("event list has %d events, want %d", len(events), want)
	}

	var lastSeq float64
	for i, e := range events {
		seq, ok := e["sequence"].(float64)
		if !ok {
			return fmt.Errorf("event %d has no sequence", i)
		}
		if seq <= lastSeq {
			return fmt.Errorf("event list not in ascending order at index %d", i)
		}
		lastSeq = seq

		clientID, _ := e["client_event_id"].(string)
		serverID, _ := e["server_id"].(string)
		if wantID, found := serverIDs[clientID]; found && wantID != serverID {
			return fmt.Errorf("event %s has server id %s, want %s", clientID, serverID, wantID)
		}
		if synced, _ := e["synced"].(bool); !synced {
			return fmt.Errorf("event %s is not marked synced", clientID)
		}
	}

	stats.EventsVerified = len(events)
	logger.Get().Info(ctx, "event list verified",
		logger.Int("events", len(events)),
		logger.String("gameID", config.GameID))
	return nil
}

// createRequest builds the create mutation for one play.
func createRequest(play Play) mutationRequest {
	return mutationRequest{
		Type:          "create",
		ClientEventID: play.ClientEventID,
		Sequence:      play.Sequence,
		Event: map[string]any{
			"client_event_id": play.ClientEventID,
			"sequence":        play.Sequence,
			"notation":        play.Notation,
			"description":     play.Description,
		},
		Audit: audit(),
	}
}

// audit builds the audit block for a simulated scorer.
func audit() auditRequest {
	return auditRequest{
		UserName:  "simulator",
		DeviceID:  "sim-1",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// rollRetry decides whether to replay the last mutation.
func rollRetry(rate float64) bool {
	if rate <= 0 {
		return false
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(retryRollDivisor))
	return float64(n.Int64())/float64(retryRollDivisor) < rate
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var successRate float64
	if stats.MutationsSubmitted > 0 {
		successRate = float64(stats.Confirmed+stats.DuplicatesReplayed+stats.ConflictsRejected+stats.Deleted) /
			float64(stats.MutationsSubmitted) * percentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playsGenerated", stats.PlaysGenerated),
		logger.Int("mutationsSubmitted", stats.MutationsSubmitted),
		logger.Int("confirmed", stats.Confirmed),
		logger.Int("duplicatesReplayed", stats.DuplicatesReplayed),
		logger.Int("conflictsRejected", stats.ConflictsRejected),
		logger.Int("deleted", stats.Deleted),
		logger.Int("failed", stats.Failed),
		logger.Int("eventsVerified", stats.EventsVerified),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("expectedRate", successRate))
}
