// game/scoring/scoring_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfarena/arena-services/shared/models"
)

func TestTimeBonus(t *testing.T) {
	assert.Equal(t, 60.0, TimeBonus(600))
	assert.Equal(t, 120.0, TimeBonus(1200))
	assert.Equal(t, 0.0, TimeBonus(0))
	// A clock pushed negative by racing writes still yields no bonus.
	assert.Equal(t, 0.0, TimeBonus(-5))
}

func TestAwardAddsDecayingBonus(t *testing.T) {
	flag := &models.Flag{ID: "f1", Points: 100, SetNumber: 2}
	player := &models.Player{ID: "p1"}

	award, err := Award(flag, &models.Round{FlagSet: 2, RemainingTime: 600}, player)
	require.NoError(t, err)
	assert.Equal(t, 160.0, award)

	// Same capture at the buzzer is worth base points only.
	award, err = Award(flag, &models.Round{FlagSet: 2, RemainingTime: 0}, player)
	require.NoError(t, err)
	assert.Equal(t, 100.0, award)
}

func TestAwardRoundsToTwoDecimals(t *testing.T) {
	flag := &models.Flag{ID: "f1", Points: 33.333, SetNumber: 1}
	round := &models.Round{FlagSet: 1, RemainingTime: 7}

	award, err := Award(flag, round, &models.Player{ID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 34.03, award)
}

func TestAwardRejectsRepeatCapture(t *testing.T) {
	flag := &models.Flag{ID: "f1", Points: 100, SetNumber: 1}
	round := &models.Round{FlagSet: 1, RemainingTime: 600}
	player := &models.Player{ID: "p1", SolvedFlags: []string{"f1"}}

	_, err := Award(flag, round, player)
	assert.ErrorIs(t, err, ErrAlreadyCaptured)
}

func TestAwardRejectsFlagOutsideActiveSet(t *testing.T) {
	flag := &models.Flag{ID: "f1", Points: 100, SetNumber: 4}
	round := &models.Round{FlagSet: 2, RemainingTime: 600}

	_, err := Award(flag, round, &models.Player{ID: "p1"})
	assert.ErrorIs(t, err, ErrWrongSet)
}
