// game/service/game_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ctfarena/arena-services/game/scoring"
	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/models"
)

// SubmissionResult reports a successful flag capture.
type SubmissionResult struct {
	Awarded  float64
	NewScore float64
}

// GameStatus is the player portal's status poll payload.
type GameStatus struct {
	Active        bool
	RemainingTime int64
}

// GameService composes the portal-facing operations: login by contact
// handle, flag submission through the scoring engine, status polls,
// challenge listings, session verification and the leaderboards.
type GameService struct {
	players  PlayerStore
	flags    FlagStore
	rounds   RoundStore
	sessions SessionStore
}

// NewGameService creates a new GameService instance.
func NewGameService(players PlayerStore, flags FlagStore, rounds RoundStore, sessions SessionStore) *GameService {
	return &GameService{
		players:  players,
		flags:    flags,
		rounds:   rounds,
		sessions: sessions,
	}
}

// PlayerLogin resolves a player by their contact handle.
func (gs *GameService) PlayerLogin(ctx context.Context, whatsapp string) (*models.Player, error) {
	player, err := gs.players.GetPlayerByWhatsapp(ctx, whatsapp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("service failed to resolve player login: %w", err)
	}
	return player, nil
}

// SubmitFlag scores a submission against the active round. The scoring
// engine decides acceptance and the award; this method applies it.
func (gs *GameService) SubmitFlag(ctx context.Context, playerID, flagCode string) (*SubmissionResult, error) {
	round, err := gs.rounds.ActiveRound(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveRound
		}
		return nil, fmt.Errorf("service failed to load active round: %w", err)
	}

	flag, err := gs.flags.GetFlagByCode(ctx, flagCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrFlagNotFound
		}
		return nil, fmt.Errorf("service failed to look up flag code: %w", err)
	}

	player, err := gs.players.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("service failed to load player: %w", err)
	}

	awarded, err := scoring.Award(flag, round, player)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := gs.players.ApplyAward(ctx, player.ID, awarded, flag.ID, now); err != nil {
		return nil, fmt.Errorf("service failed to apply award: %w", err)
	}

	log.Printf("Player %s captured flag %s for %.2f points.", player.ID, flag.ID, awarded)
	return &SubmissionResult{
		Awarded:  awarded,
		NewScore: player.Score + awarded,
	}, nil
}

// Status reports whether a round is running and the effective remaining
// seconds for the polling player: the shared clock plus their personal extra
// time, floored at zero.
func (gs *GameService) Status(ctx context.Context, playerID string) (*GameStatus, error) {
	round, err := gs.rounds.ActiveRound(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &GameStatus{Active: false, RemainingTime: 0}, nil
		}
		return nil, fmt.Errorf("service failed to load active round: %w", err)
	}

	var extra int64
	if playerID != "" {
		if player, err := gs.players.GetPlayer(ctx, playerID); err == nil {
			extra = player.ExtraTime
		}
	}

	remaining := round.RemainingTime + extra
	if remaining < 0 {
		remaining = 0
	}
	return &GameStatus{Active: true, RemainingTime: remaining}, nil
}

// Challenges lists the flags of the active round's set. No active round
// means no visible tasks. Callers must not expose the codes.
func (gs *GameService) Challenges(ctx context.Context) ([]models.Flag, error) {
	round, err := gs.rounds.ActiveRound(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service failed to load active round: %w", err)
	}

	flags, err := gs.flags.ListFlagsBySet(ctx, round.FlagSet)
	if err != nil {
		return nil, fmt.Errorf("service failed to list challenges: %w", err)
	}
	return flags, nil
}

// VerifySession validates a portal session key against the active round.
// Redis answers the common case; a cache miss falls back to the
// authoritative round document so a Redis restart never locks players out.
func (gs *GameService) VerifySession(ctx context.Context, sessionID string) error {
	if _, err := gs.sessions.GetSession(ctx, sessionID); err == nil {
		return nil
	}

	round, err := gs.rounds.ActiveRoundBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidSession
		}
		return fmt.Errorf("service failed to verify session: %w", err)
	}
	if time.Now().After(round.SessionExpiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// Leaderboard returns the players of the most relevant round's group: the
// active round if one is running, otherwise the most recently ended one.
func (gs *GameService) Leaderboard(ctx context.Context) ([]models.Player, error) {
	round, err := gs.rounds.ActiveRound(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("service failed to load active round: %w", err)
		}
		round, err = gs.rounds.LatestEndedRound(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("service failed to load latest round: %w", err)
		}
	}

	players, err := gs.players.GroupLeaderboard(ctx, round.GroupID)
	if err != nil {
		return nil, fmt.Errorf("service failed to load leaderboard: %w", err)
	}
	return players, nil
}

// OverallLeaderboard returns every player in leaderboard order.
func (gs *GameService) OverallLeaderboard(ctx context.Context) ([]models.Player, error) {
	players, err := gs.players.OverallLeaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to load overall leaderboard: %w", err)
	}
	return players, nil
}
