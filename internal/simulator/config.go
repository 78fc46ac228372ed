package simulator

import "time"

// Config holds configuration for a simulated scoring session.
type Config struct {
	BaseURL   string        // Base URL of the service
	AccountID string        // Account the simulated game belongs to
	GameID    string        // Game identifier; empty means a generated one
	NumPlays  int           // Number of plays to score
	RetryRate float64       // Fraction of plays resubmitted as duplicates
	Conflicts int           // Number of deliberate sequence collisions
	Deletes   int           // Number of plays deleted after scoring
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for simulator output
	Verbose   bool          // Enable verbose logging
}

// Play is one scored play to be submitted as a create mutation.
type Play struct {
	ClientEventID string
	Sequence      int64
	Notation      string
	Description   string
}

// mutationRequest mirrors the API's mutation envelope.
type mutationRequest struct {
	Type          string         `json:"type"`
	ClientEventID string         `json:"client_event_id,omitempty"`
	ServerEventID string         `json:"server_event_id,omitempty"`
	Sequence      int64          `json:"sequence,omitempty"`
	Event         map[string]any `json:"event,omitempty"`
	Audit         auditRequest   `json:"audit"`
}

type auditRequest struct {
	UserName  string `json:"user_name,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// mutationResponse mirrors the API's confirmation envelope.
type mutationResponse struct {
	ServerEventID string         `json:"server_event_id"`
	Sequence      int64          `json:"sequence"`
	Event         map[string]any `json:"event"`
}

// eventsResponse mirrors the API's event list envelope.
type eventsResponse struct {
	Events []map[string]any `json:"events"`
}

// Stats holds simulation statistics.
type Stats struct {
	PlaysGenerated     int
	MutationsSubmitted int
	Confirmed          int
	DuplicatesReplayed int
	ConflictsRejected  int
	Deleted            int
	Failed             int
	EventsVerified     int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
