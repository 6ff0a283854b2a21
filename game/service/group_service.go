// game/service/group_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/models"
)

// groupStagger is the gap between consecutive scheduled team slots. The
// schedule is advisory; actual round starts are admin-triggered.
const groupStagger = 30 * time.Minute

// GroupService groups players into fixed-size teams and tracks the
// round-robin start-time schedule.
type GroupService struct {
	groups     GroupStore
	players    PlayerStore
	autoAssign bool
}

// NewGroupService creates a new GroupService instance. autoAssign enables
// batch grouping of queued players into full teams.
func NewGroupService(groups GroupStore, players PlayerStore, autoAssign bool) *GroupService {
	return &GroupService{
		groups:     groups,
		players:    players,
		autoAssign: autoAssign,
	}
}

// CreateGroup allocates the next sequential team name and schedules it 30
// minutes after the last existing slot (or 30 minutes from now for the
// first team).
func (gs *GroupService) CreateGroup(ctx context.Context) (*models.Group, error) {
	startTime, err := gs.groups.LatestStartTime(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("service failed to determine next start time: %w", err)
		}
		startTime = time.Now()
	}
	startTime = startTime.Add(groupStagger)

	number, err := gs.groups.NextTeamNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to allocate team name: %w", err)
	}

	now := time.Now()
	group := &models.Group{
		ID:        uuid.NewString(),
		Name:      fmt.Sprintf("Team %d", number),
		PlayerIDs: []string{},
		StartTime: startTime,
		CreatedAt: &now,
	}
	if err := gs.groups.InsertGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("service failed to create group: %w", err)
	}

	log.Printf("Created group %q scheduled for %v.", group.Name, startTime)
	return group, nil
}

// AddPlayerToGroup adds a player to a team, idempotently, enforcing the
// six-player cap at add-time.
func (gs *GroupService) AddPlayerToGroup(ctx context.Context, groupID, playerID string) error {
	group, err := gs.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("service failed to load group: %w", err)
	}
	if _, err := gs.players.GetPlayer(ctx, playerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("service failed to load player: %w", err)
	}

	alreadyMember := false
	for _, id := range group.PlayerIDs {
		if id == playerID {
			alreadyMember = true
			break
		}
	}
	if !alreadyMember && len(group.PlayerIDs) >= models.MaxGroupSize {
		return ErrGroupFull
	}

	if err := gs.groups.AddPlayer(ctx, groupID, playerID); err != nil {
		return fmt.Errorf("service failed to add player to group: %w", err)
	}
	if err := gs.players.SetPlayerGroup(ctx, playerID, groupID); err != nil {
		return fmt.Errorf("service failed to set player group: %w", err)
	}
	return nil
}

// RemovePlayerFromGroup removes a player from a team and prunes the team if
// it became empty — orphaned empty teams never accumulate.
func (gs *GroupService) RemovePlayerFromGroup(ctx context.Context, groupID, playerID string) error {
	if err := gs.groups.RemovePlayer(ctx, groupID, playerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("service failed to remove player from group: %w", err)
	}
	if err := gs.players.ClearPlayerGroup(ctx, playerID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("service failed to clear player group: %w", err)
	}
	if err := gs.groups.DeleteEmptyGroups(ctx); err != nil {
		return fmt.Errorf("service failed to prune empty groups: %w", err)
	}
	return nil
}

// AutoAssignGroups batches queued players (no group, not yet played) into
// full teams of six, oldest registration first. Partial teams are never
// created. No-op unless auto-assignment is enabled.
func (gs *GroupService) AutoAssignGroups(ctx context.Context) error {
	if !gs.autoAssign {
		return nil
	}

	queued, err := gs.players.ListUngroupedPlayers(ctx)
	if err != nil {
		return fmt.Errorf("service failed to list queued players: %w", err)
	}

	for len(queued) >= models.MaxGroupSize {
		batch := queued[:models.MaxGroupSize]
		queued = queued[models.MaxGroupSize:]

		group, err := gs.CreateGroup(ctx)
		if err != nil {
			return err
		}
		for _, player := range batch {
			if err := gs.groups.AddPlayer(ctx, group.ID, player.ID); err != nil {
				return fmt.Errorf("service failed to auto-assign player %s: %w", player.ID, err)
			}
			if err := gs.players.SetPlayerGroup(ctx, player.ID, group.ID); err != nil {
				return fmt.Errorf("service failed to set auto-assigned group: %w", err)
			}
		}
		log.Printf("Auto-assigned %d players to %q.", models.MaxGroupSize, group.Name)
	}
	return nil
}

// ListGroups returns all groups with their players resolved, in schedule
// order.
func (gs *GroupService) ListGroups(ctx context.Context) ([]models.PopulatedGroup, error) {
	groups, err := gs.groups.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to list groups: %w", err)
	}
	return gs.populateGroups(ctx, groups)
}

// UpdateStartTime sets one group's scheduled slot.
func (gs *GroupService) UpdateStartTime(ctx context.Context, groupID string, startTime time.Time) error {
	if err := gs.groups.UpdateStartTime(ctx, groupID, startTime); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("service failed to update group start time: %w", err)
	}
	return nil
}

// RescheduleFrom re-staggers every pending group from the given one onward,
// 30 minutes apart starting at startTime.
func (gs *GroupService) RescheduleFrom(ctx context.Context, groupID string, startTime time.Time) error {
	pending, err := gs.groups.ListPendingGroups(ctx)
	if err != nil {
		return fmt.Errorf("service failed to list pending groups: %w", err)
	}

	startIndex := -1
	for i, group := range pending {
		if group.ID == groupID {
			startIndex = i
			break
		}
	}
	if startIndex == -1 {
		return ErrGroupNotFound
	}

	slot := startTime
	for _, group := range pending[startIndex:] {
		if err := gs.groups.UpdateStartTime(ctx, group.ID, slot); err != nil {
			return fmt.Errorf("service failed to reschedule group %s: %w", group.ID, err)
		}
		slot = slot.Add(groupStagger)
	}
	return nil
}

func (gs *GroupService) populateGroups(ctx context.Context, groups []models.Group) ([]models.PopulatedGroup, error) {
	populated := make([]models.PopulatedGroup, 0, len(groups))
	for _, group := range groups {
		players, err := gs.players.ListPlayersByIDs(ctx, group.PlayerIDs)
		if err != nil {
			return nil, fmt.Errorf("service failed to resolve players of group %s: %w", group.ID, err)
		}
		populated = append(populated, models.PopulatedGroup{Group: group, Players: players})
	}
	return populated, nil
}
