// game/service/game_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfarena/arena-services/game/scoring"
	"github.com/ctfarena/arena-services/shared/models"
)

type gameFixture struct {
	players  *fakePlayerStore
	flags    *fakeFlagStore
	rounds   *fakeRoundStore
	sessions *fakeSessionStore
	svc      *GameService
}

func newGameFixture() *gameFixture {
	f := &gameFixture{
		players:  newFakePlayerStore(),
		flags:    newFakeFlagStore(),
		rounds:   newFakeRoundStore(),
		sessions: newFakeSessionStore(),
	}
	f.svc = NewGameService(f.players, f.flags, f.rounds, f.sessions)
	return f
}

func (f *gameFixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.players.CreatePlayer(ctx, &models.Player{
		ID:       "p1",
		Name:     "Ada",
		Whatsapp: "+4915112345678",
		GroupID:  "g1",
		Status:   models.PlayerStatusPlaying,
	}))
	require.NoError(t, f.flags.InsertFlag(ctx, &models.Flag{
		ID: "f1", Title: "Warmup", Code: "FLG-001", Points: 100, SetNumber: 2,
	}))
	require.NoError(t, f.flags.InsertFlag(ctx, &models.Flag{
		ID: "f2", Title: "Off-set", Code: "FLG-002", Points: 50, SetNumber: 5,
	}))
	require.NoError(t, f.rounds.InsertRound(ctx, &models.Round{
		ID:               "r1",
		GroupID:          "g1",
		Active:           true,
		RemainingTime:    600,
		FlagSet:          2,
		SessionID:        "AB12CD",
		SessionExpiresAt: time.Now().Add(30 * time.Minute),
	}))
}

func TestPlayerLogin(t *testing.T) {
	f := newGameFixture()
	f.seed(t)
	ctx := context.Background()

	player, err := f.svc.PlayerLogin(ctx, "+4915112345678")
	require.NoError(t, err)
	assert.Equal(t, "p1", player.ID)

	_, err = f.svc.PlayerLogin(ctx, "+490000000000")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestSubmitFlagAwardsTimeBonus(t *testing.T) {
	f := newGameFixture()
	f.seed(t)
	ctx := context.Background()

	// 100 base points plus 600 remaining seconds at 0.1 each.
	result, err := f.svc.SubmitFlag(ctx, "p1", "FLG-001")
	require.NoError(t, err)
	assert.Equal(t, 160.0, result.Awarded)
	assert.Equal(t, 160.0, result.NewScore)

	player, err := f.players.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 160.0, player.Score)
	assert.Contains(t, player.SolvedFlags, "f1")
	assert.NotNil(t, player.LastSubmissionTime)
}

func TestSubmitFlagRejections(t *testing.T) {
	f := newGameFixture()
	f.seed(t)
	ctx := context.Background()

	_, err := f.svc.SubmitFlag(ctx, "p1", "FLG-404")
	assert.ErrorIs(t, err, ErrFlagNotFound)

	_, err = f.svc.SubmitFlag(ctx, "p1", "FLG-002")
	assert.ErrorIs(t, err, scoring.ErrWrongSet)

	_, err = f.svc.SubmitFlag(ctx, "p1", "FLG-001")
	require.NoError(t, err)
	_, err = f.svc.SubmitFlag(ctx, "p1", "FLG-001")
	assert.ErrorIs(t, err, scoring.ErrAlreadyCaptured)
}

func TestSubmitFlagWithoutActiveRound(t *testing.T) {
	f := newGameFixture()

	_, err := f.svc.SubmitFlag(context.Background(), "p1", "FLG-001")
	assert.ErrorIs(t, err, ErrNoActiveRound)
}

func TestStatusIncludesPlayerExtraTime(t *testing.T) {
	f := newGameFixture()
	f.seed(t)
	ctx := context.Background()
	require.NoError(t, f.players.AddExtraTime(ctx, "p1", 120))

	status, err := f.svc.Status(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, int64(720), status.RemainingTime)

	// Anonymous polls see the shared clock only.
	status, err = f.svc.Status(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(600), status.RemainingTime)
}

func TestStatusWithoutActiveRound(t *testing.T) {
	f := newGameFixture()

	status, err := f.svc.Status(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, status.Active)
	assert.Zero(t, status.RemainingTime)
}

func TestChallengesFollowActiveFlagSet(t *testing.T) {
	f := newGameFixture()
	f.seed(t)
	ctx := context.Background()

	flags, err := f.svc.Challenges(ctx)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "f1", flags[0].ID)
}

func TestChallengesEmptyBetweenRounds(t *testing.T) {
	f := newGameFixture()

	flags, err := f.svc.Challenges(context.Background())
	require.NoError(t, err)
	assert.Nil(t, flags)
}

func TestVerifySessionRedisFastPath(t *testing.T) {
	f := newGameFixture()
	f.seed(t)
	ctx := context.Background()
	require.NoError(t, f.sessions.PutSession(ctx, "AB12CD", "r1", time.Minute))

	assert.NoError(t, f.svc.VerifySession(ctx, "AB12CD"))
}

func TestVerifySessionFallsBackToRoundDocument(t *testing.T) {
	f := newGameFixture()
	f.seed(t)
	ctx := context.Background()

	// Nothing cached: the round document still answers.
	assert.NoError(t, f.svc.VerifySession(ctx, "AB12CD"))
	assert.ErrorIs(t, f.svc.VerifySession(ctx, "ZZZZZZ"), ErrInvalidSession)
}

func TestVerifySessionExpired(t *testing.T) {
	f := newGameFixture()
	ctx := context.Background()
	require.NoError(t, f.rounds.InsertRound(ctx, &models.Round{
		ID:               "r1",
		GroupID:          "g1",
		Active:           true,
		RemainingTime:    600,
		FlagSet:          1,
		SessionID:        "EXPIRD",
		SessionExpiresAt: time.Now().Add(-time.Minute),
	}))

	assert.ErrorIs(t, f.svc.VerifySession(ctx, "EXPIRD"), ErrSessionExpired)
}

func TestLeaderboardOrdering(t *testing.T) {
	f := newGameFixture()
	ctx := context.Background()

	early := time.Now().Add(-2 * time.Minute)
	late := time.Now().Add(-1 * time.Minute)
	for _, player := range []*models.Player{
		{ID: "p1", Name: "Ada", Whatsapp: "+491", GroupID: "g1", Score: 100, LastSubmissionTime: &late},
		{ID: "p2", Name: "Ben", Whatsapp: "+492", GroupID: "g1", Score: 100, LastSubmissionTime: &early},
		{ID: "p3", Name: "Cas", Whatsapp: "+493", GroupID: "g1", Score: 250},
	} {
		require.NoError(t, f.players.CreatePlayer(ctx, player))
	}
	end := time.Now()
	require.NoError(t, f.rounds.InsertRound(ctx, &models.Round{
		ID: "r1", GroupID: "g1", Active: false, EndTime: &end, FlagSet: 1,
	}))

	// No active round: the most recently ended one feeds the board. Ties
	// break toward the earlier submission.
	board, err := f.svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "p3", board[0].ID)
	assert.Equal(t, "p2", board[1].ID)
	assert.Equal(t, "p1", board[2].ID)
}

func TestLeaderboardEmptyWithoutAnyRound(t *testing.T) {
	f := newGameFixture()

	board, err := f.svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Nil(t, board)
}
