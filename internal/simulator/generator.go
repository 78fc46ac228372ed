package simulator

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"dugout/pkg/logger"
)

// play outcomes weighted roughly like a real game: outs are common,
// home runs are rare.
var outcomes = []struct {
	notation    string
	description string
	weight      int64
}{
	{"K", "strikeout", 20},
	{"6-3", "groundout to short", 15},
	{"F8", "flyout to center", 15},
	{"1B", "single", 15},
	{"BB", "walk", 10},
	{"2B", "double", 8},
	{"E5", "error on third", 5},
	{"6-4-3", "double play", 5},
	{"3B", "triple", 3},
	{"HBP", "hit by pitch", 2},
	{"HR", "home run", 2},
}

var totalOutcomeWeight = func() int64 {
	var sum int64
	for _, o := range outcomes {
		sum += o.weight
	}
	return sum
}()

// randomOutcome picks a weighted play outcome using crypto/rand.
func randomOutcome() (string, string) {
	n, _ := rand.Int(rand.Reader, big.NewInt(totalOutcomeWeight))
	roll := n.Int64()
	for _, o := range outcomes {
		roll -= o.weight
		if roll < 0 {
			return o.notation, o.description
		}
	}
	last := outcomes[len(outcomes)-1]
	return last.notation, last.description
}

// generatePlays creates a scripted game of plays with ascending sequences
// and unique client event ids.
func generatePlays(ctx context.Context, config *Config, stats *Stats) []Play {
	logger.Get().Info(ctx, "generating plays", logger.Int("numPlays", config.NumPlays))

	plays := make([]Play, config.NumPlays)
	for i := range plays {
		notation, description := randomOutcome()
		plays[i] = Play{
			ClientEventID: uuid.NewString(),
			Sequence:      int64(i + 1),
			Notation:      notation,
			Description:   description,
		}
	}

	stats.PlaysGenerated = len(plays)
	logger.Get().Info(ctx, "generated plays", logger.Int("count", len(plays)))
	return plays
}
