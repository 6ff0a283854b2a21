// game/service/round_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfarena/arena-services/shared/models"
)

type roundFixture struct {
	rounds   *fakeRoundStore
	groups   *fakeGroupStore
	players  *fakePlayerStore
	sessions *fakeSessionStore
	driver   *fakeDriver
	svc      *RoundService
}

func newRoundFixture(t *testing.T) *roundFixture {
	t.Helper()
	f := &roundFixture{
		rounds:   newFakeRoundStore(),
		groups:   newFakeGroupStore(),
		players:  newFakePlayerStore(),
		sessions: newFakeSessionStore(),
		driver:   &fakeDriver{},
	}
	f.svc = NewRoundService(
		f.rounds, f.groups, f.players, f.sessions, f.driver,
		20*time.Minute, 30*time.Minute,
	)
	return f
}

func (f *roundFixture) seedGroup(t *testing.T, id string, playerIDs ...string) {
	t.Helper()
	ctx := context.Background()
	for _, pid := range playerIDs {
		require.NoError(t, f.players.CreatePlayer(ctx, &models.Player{
			ID:       pid,
			Name:     pid,
			Whatsapp: "+49" + pid,
			GroupID:  id,
			Status:   models.PlayerStatusRegistered,
		}))
	}
	require.NoError(t, f.groups.InsertGroup(ctx, &models.Group{
		ID:        id,
		Name:      "Team " + id,
		PlayerIDs: playerIDs,
		StartTime: time.Now(),
	}))
}

func TestStartRoundInitializesClockAndSession(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1", "p2")

	round, err := f.svc.StartRound(context.Background(), "g1", 3)
	require.NoError(t, err)

	assert.True(t, round.Active)
	assert.Equal(t, int64(1200), round.RemainingTime)
	assert.Equal(t, 3, round.FlagSet)
	assert.Len(t, round.SessionID, 6)
	assert.Equal(t, 1, f.driver.starts)

	// Session key is cached for fast verification.
	roundID, err := f.sessions.GetSession(context.Background(), round.SessionID)
	require.NoError(t, err)
	assert.Equal(t, round.ID, roundID)

	// Group and players come back populated.
	require.NotNil(t, round.Group)
	assert.Len(t, round.Group.Players, 2)

	p1, err := f.players.GetPlayer(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusPlaying, p1.Status)
}

func TestStartRoundArchivesPreviousRound(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1")
	f.seedGroup(t, "g2", "p2")
	ctx := context.Background()

	first, err := f.svc.StartRound(ctx, "g1", 1)
	require.NoError(t, err)
	second, err := f.svc.StartRound(ctx, "g2", 2)
	require.NoError(t, err)

	assert.Equal(t, 1, f.rounds.activeCount())
	active, err := f.rounds.ActiveRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	// The outgoing round's session key is gone.
	_, err = f.sessions.GetSession(ctx, first.SessionID)
	assert.Error(t, err)
}

func TestStartRoundValidation(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1")
	ctx := context.Background()

	_, err := f.svc.StartRound(ctx, "g1", 0)
	assert.ErrorIs(t, err, ErrInvalidFlagSet)
	_, err = f.svc.StartRound(ctx, "g1", 7)
	assert.ErrorIs(t, err, ErrInvalidFlagSet)
	_, err = f.svc.StartRound(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestEndRoundArchivesAndFinishesPlayers(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1", "p2")
	ctx := context.Background()

	started, err := f.svc.StartRound(ctx, "g1", 1)
	require.NoError(t, err)

	ended, err := f.svc.EndRound(ctx)
	require.NoError(t, err)
	require.NotNil(t, ended)
	assert.Equal(t, started.ID, ended.ID)
	assert.False(t, ended.Active)
	assert.Zero(t, f.rounds.activeCount())

	p1, err := f.players.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusFinished, p1.Status)
	assert.True(t, p1.AlreadyPlayed)
	// Group reference survives for the leaderboard.
	assert.Equal(t, "g1", p1.GroupID)

	group, err := f.groups.GetGroup(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, group.RoundCompleted)
	assert.False(t, group.CurrentRound)
	assert.Equal(t, 1, f.driver.stops)
}

func TestEndRoundWithoutActiveRoundIsNoOp(t *testing.T) {
	f := newRoundFixture(t)

	ended, err := f.svc.EndRound(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ended)
	assert.Equal(t, 1, f.driver.stops)

	// Calling it again stays harmless.
	ended, err = f.svc.EndRound(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ended)
}

func TestAddTimeScoping(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1")
	ctx := context.Background()

	_, err := f.svc.StartRound(ctx, "g1", 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.AddTime(ctx, TimeTargetRound, "", 5, 30))
	active, err := f.rounds.ActiveRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1200+330), active.RemainingTime)

	// Group credit only lands while that group's round is the active one.
	require.NoError(t, f.svc.AddTime(ctx, TimeTargetGroup, "g1", 1, 0))
	assert.ErrorIs(t, f.svc.AddTime(ctx, TimeTargetGroup, "g2", 1, 0), ErrNoActiveRound)

	require.NoError(t, f.svc.AddTime(ctx, TimeTargetPlayer, "p1", 0, 45))
	p1, err := f.players.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(45), p1.ExtraTime)

	assert.ErrorIs(t, f.svc.AddTime(ctx, "team", "g1", 1, 0), ErrUnknownTimeTarget)
	assert.ErrorIs(t, f.svc.AddTime(ctx, TimeTargetPlayer, "missing", 1, 0), ErrPlayerNotFound)
}

func TestAddTimeWithoutActiveRound(t *testing.T) {
	f := newRoundFixture(t)

	err := f.svc.AddTime(context.Background(), TimeTargetRound, "", 1, 0)
	assert.ErrorIs(t, err, ErrNoActiveRound)
}

func TestSetRemainingTime(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1")
	ctx := context.Background()

	_, err := f.svc.StartRound(ctx, "g1", 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.SetRemainingTime(ctx, 90))
	active, err := f.rounds.ActiveRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(90), active.RemainingTime)
}

func TestResumeRestartsCountdown(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1")
	ctx := context.Background()

	require.NoError(t, f.rounds.InsertRound(ctx, &models.Round{
		ID:            "r1",
		GroupID:       "g1",
		Active:        true,
		RemainingTime: 300,
		FlagSet:       1,
	}))

	require.NoError(t, f.svc.Resume(ctx))
	assert.Equal(t, 1, f.driver.starts)
	assert.Equal(t, 1, f.rounds.activeCount())
}

func TestResumeArchivesRoundStuckAtZero(t *testing.T) {
	f := newRoundFixture(t)
	f.seedGroup(t, "g1", "p1")
	ctx := context.Background()

	require.NoError(t, f.rounds.InsertRound(ctx, &models.Round{
		ID:            "r1",
		GroupID:       "g1",
		Active:        true,
		RemainingTime: 0,
		FlagSet:       1,
	}))

	require.NoError(t, f.svc.Resume(ctx))
	assert.Zero(t, f.rounds.activeCount())
	assert.Zero(t, f.driver.starts)
}

func TestResumeWithoutRoundIsQuiet(t *testing.T) {
	f := newRoundFixture(t)
	require.NoError(t, f.svc.Resume(context.Background()))
	assert.Zero(t, f.driver.starts)
}

func TestCurrentRoundNilWhenIdle(t *testing.T) {
	f := newRoundFixture(t)

	round, err := f.svc.CurrentRound(context.Background())
	require.NoError(t, err)
	assert.Nil(t, round)
}
