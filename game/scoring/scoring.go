// game/scoring/scoring.go
package scoring

import (
	"errors"
	"math"

	"github.com/ctfarena/arena-services/shared/models"
)

// timeBonusRate is the fraction of each remaining second credited as bonus
// points: a full 20-minute clock is worth 120 extra points, decaying to zero.
const timeBonusRate = 0.1

// Rejection reasons for a submission. The API layer turns these into
// player-facing messages.
var (
	ErrAlreadyCaptured = errors.New("flag already captured")
	ErrWrongSet        = errors.New("flag not in the active set")
)

// TimeBonus computes the speed bonus for the remaining round seconds.
// Never negative: an expired clock simply yields no bonus.
func TimeBonus(remainingTime int64) float64 {
	return math.Max(0, float64(remainingTime)*timeBonusRate)
}

// Award validates a submission against the player's history and the round's
// flag set, and returns the points to credit: base points plus the time
// bonus, rounded to two decimals. Pure; applying the award to the player is
// the caller's job.
func Award(flag *models.Flag, round *models.Round, player *models.Player) (float64, error) {
	if player.HasSolved(flag.ID) {
		return 0, ErrAlreadyCaptured
	}
	if flag.SetNumber != round.FlagSet {
		return 0, ErrWrongSet
	}
	return round2(flag.Points + TimeBonus(round.RemainingTime)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
