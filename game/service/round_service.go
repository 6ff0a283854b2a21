// game/service/round_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/models"
)

// Add-time target kinds.
const (
	TimeTargetRound  = "round"
	TimeTargetGroup  = "group"
	TimeTargetPlayer = "player"
)

const sessionKeyLength = 6
const sessionKeyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoundService is the round lifecycle state machine: it starts rounds,
// archives them on explicit end or auto-expiry, and scopes admin time
// adjustments. History is archived, never deleted, so leaderboards stay
// queryable after a round ends.
type RoundService struct {
	rounds   RoundStore
	groups   GroupStore
	players  PlayerStore
	sessions SessionStore
	driver   CountdownDriver

	roundDuration time.Duration
	sessionTTL    time.Duration
}

// NewRoundService creates a new RoundService instance.
func NewRoundService(
	rounds RoundStore,
	groups GroupStore,
	players PlayerStore,
	sessions SessionStore,
	driver CountdownDriver,
	roundDuration, sessionTTL time.Duration,
) *RoundService {
	return &RoundService{
		rounds:        rounds,
		groups:        groups,
		players:       players,
		sessions:      sessions,
		driver:        driver,
		roundDuration: roundDuration,
		sessionTTL:    sessionTTL,
	}
}

// StartRound creates a fresh active round for the given group and flag set.
// Any previously active round is forcibly archived first, so at most one
// round is ever active. Returns the new round with its group and players
// expanded.
func (rs *RoundService) StartRound(ctx context.Context, groupID string, flagSet int) (*models.PopulatedRound, error) {
	if flagSet < models.MinFlagSet || flagSet > models.MaxFlagSet {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFlagSet, flagSet)
	}

	group, err := rs.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("service failed to load group for round start: %w", err)
	}

	now := time.Now()

	// Drop the outgoing round's session key before archiving it.
	if previous, err := rs.rounds.ActiveRound(ctx); err == nil {
		if err := rs.sessions.DeleteSession(ctx, previous.SessionID); err != nil {
			log.Printf("WARN: Failed to drop session key of archived round %s: %v", previous.ID, err)
		}
	}
	if err := rs.rounds.ArchiveActiveRounds(ctx, now); err != nil {
		return nil, fmt.Errorf("service failed to archive previous rounds: %w", err)
	}

	if err := rs.groups.SetCurrentGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("service failed to mark group as current: %w", err)
	}
	if err := rs.players.SetPlayersStatus(ctx, group.PlayerIDs, models.PlayerStatusPlaying); err != nil {
		log.Printf("WARN: Failed to mark players of group %s as playing: %v", groupID, err)
	}

	round := &models.Round{
		ID:               uuid.NewString(),
		GroupID:          groupID,
		StartTime:        now,
		Active:           true,
		RemainingTime:    int64(rs.roundDuration.Seconds()),
		FlagSet:          flagSet,
		SessionID:        newSessionKey(),
		SessionExpiresAt: now.Add(rs.sessionTTL),
	}
	if err := rs.rounds.InsertRound(ctx, round); err != nil {
		return nil, fmt.Errorf("service failed to create round: %w", err)
	}

	// The round document stays authoritative for the session key; Redis is
	// only the fast verification path, so a write failure is not fatal.
	if err := rs.sessions.PutSession(ctx, round.SessionID, round.ID, rs.sessionTTL); err != nil {
		log.Printf("WARN: Failed to cache session key for round %s: %v", round.ID, err)
	}

	rs.driver.Start()
	log.Printf("Round %s started for group %s (flag set %d, %v on the clock).",
		round.ID, group.Name, flagSet, rs.roundDuration)

	return rs.populateRound(ctx, round), nil
}

// EndRound archives the active round: its players are marked finished (their
// group reference is preserved for the leaderboard), the group is marked
// completed, the round deactivated and the countdown stopped. Both the
// explicit admin call and auto-expiry converge here. When no round is active
// it returns (nil, nil) — re-invocation is a soft no-op, not an error.
func (rs *RoundService) EndRound(ctx context.Context) (*models.Round, error) {
	active, err := rs.rounds.ActiveRound(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rs.driver.Stop()
			return nil, nil
		}
		return nil, fmt.Errorf("service failed to load active round: %w", err)
	}

	group, err := rs.groups.GetGroup(ctx, active.GroupID)
	if err != nil {
		// A missing group is repairable damage, not a reason to leave the
		// round active forever.
		log.Printf("WARN: Active round %s references missing group %s: %v", active.ID, active.GroupID, err)
	} else {
		if err := rs.players.FinishPlayers(ctx, group.PlayerIDs); err != nil {
			return nil, fmt.Errorf("service failed to finish players of group %s: %w", group.ID, err)
		}
		if err := rs.groups.MarkGroupCompleted(ctx, group.ID); err != nil {
			return nil, fmt.Errorf("service failed to mark group %s completed: %w", group.ID, err)
		}
	}

	now := time.Now()
	if err := rs.rounds.FinalizeRound(ctx, active.ID, now); err != nil {
		return nil, fmt.Errorf("service failed to finalize round %s: %w", active.ID, err)
	}
	if err := rs.sessions.DeleteSession(ctx, active.SessionID); err != nil {
		log.Printf("WARN: Failed to drop session key of round %s: %v", active.ID, err)
	}

	rs.driver.Stop()
	log.Printf("Round %s ended. History preserved.", active.ID)

	active.Active = false
	active.EndTime = &now
	active.RemainingTime = 0
	return active, nil
}

// ExpireActiveRound is the countdown driver's auto-expiry callback.
func (rs *RoundService) ExpireActiveRound(ctx context.Context) error {
	_, err := rs.EndRound(ctx)
	return err
}

// AddTime credits minutes+seconds to a target: the globally active round's
// clock, a group's clock (only while that group's round is the active one),
// or a single player's personal extra-time accumulator.
func (rs *RoundService) AddTime(ctx context.Context, targetType, targetID string, minutes, seconds int64) error {
	total := minutes*60 + seconds

	switch targetType {
	case TimeTargetRound:
		if err := rs.rounds.AddRemainingTime(ctx, total); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoActiveRound
			}
			return fmt.Errorf("service failed to add round time: %w", err)
		}
	case TimeTargetGroup:
		if err := rs.rounds.AddRemainingTimeForGroup(ctx, targetID, total); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoActiveRound
			}
			return fmt.Errorf("service failed to add group time: %w", err)
		}
	case TimeTargetPlayer:
		if err := rs.players.AddExtraTime(ctx, targetID, total); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("service failed to add player extra time: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTimeTarget, targetType)
	}

	log.Printf("Added %ds to %s %s.", total, targetType, targetID)
	return nil
}

// SetRemainingTime overwrites the active round's clock.
func (rs *RoundService) SetRemainingTime(ctx context.Context, seconds int64) error {
	if err := rs.rounds.SetRemainingTime(ctx, seconds); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveRound
		}
		return fmt.Errorf("service failed to set remaining time: %w", err)
	}
	return nil
}

// CurrentRound returns the populated active round, or nil when none exists.
func (rs *RoundService) CurrentRound(ctx context.Context) (*models.PopulatedRound, error) {
	active, err := rs.rounds.ActiveRound(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service failed to load active round: %w", err)
	}
	return rs.populateRound(ctx, active), nil
}

// Resume restarts the countdown for a round that was active when the process
// last stopped. Without this, a restart would silently freeze the round. A
// round found stuck at zero is archived instead.
func (rs *RoundService) Resume(ctx context.Context) error {
	active, err := rs.rounds.ActiveRound(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service failed to check for resumable round: %w", err)
	}

	if active.RemainingTime > 0 {
		log.Printf("Resuming global countdown for existing round %s (%ds remaining).", active.ID, active.RemainingTime)
		rs.driver.Start()
		return nil
	}

	log.Printf("Found active round %s with no time remaining at boot, archiving it.", active.ID)
	_, err = rs.EndRound(ctx)
	return err
}

// populateRound expands a round with its group and that group's players.
// Population failures degrade to the bare round rather than failing the call.
func (rs *RoundService) populateRound(ctx context.Context, round *models.Round) *models.PopulatedRound {
	populated := &models.PopulatedRound{Round: *round}

	group, err := rs.groups.GetGroup(ctx, round.GroupID)
	if err != nil {
		log.Printf("WARN: Could not populate group %s for round %s: %v", round.GroupID, round.ID, err)
		return populated
	}
	players, err := rs.players.ListPlayersByIDs(ctx, group.PlayerIDs)
	if err != nil {
		log.Printf("WARN: Could not populate players of group %s: %v", group.ID, err)
	}
	populated.Group = &models.PopulatedGroup{Group: *group, Players: players}
	return populated
}

// newSessionKey generates the short human-typeable token gating portal
// access. Collisions are not checked; at event scale the birthday risk is
// acceptable.
func newSessionKey() string {
	b := make([]byte, sessionKeyLength)
	for i := range b {
		b[i] = sessionKeyCharset[rand.Intn(len(sessionKeyCharset))]
	}
	return string(b)
}
