// game/service/player_service.go
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

// PlayerService encapsulates admin-side player management. Removing a player
// also repairs group membership so no team keeps a dangling reference.
type PlayerService struct {
	players  PlayerStore
	groups   GroupStore
	assigner *GroupService
}

// NewPlayerService creates a new PlayerService instance.
func NewPlayerService(players PlayerStore, groups GroupStore, assigner *GroupService) *PlayerService {
	return &PlayerService{
		players:  players,
		groups:   groups,
		assigner: assigner,
	}
}

// CreatePlayer registers a new player. The contact handle is globally
// unique. When batch auto-assignment is enabled, queued players are grouped
// right after registration.
func (ps *PlayerService) CreatePlayer(ctx context.Context, name, whatsapp string) (*models.Player, error) {
	now := time.Now()
	player := &models.Player{
		ID:          uuid.NewString(),
		Name:        name,
		Whatsapp:    whatsapp,
		Score:       0,
		SolvedFlags: []string{},
		Status:      models.PlayerStatusRegistered,
		CreatedAt:   &now,
	}
	if err := ps.players.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateHandle
		}
		return nil, fmt.Errorf("service failed to create player: %w", err)
	}

	if err := ps.assigner.AutoAssignGroups(ctx); err != nil {
		log.Printf("WARN: Auto-assignment after registering %s failed: %v", player.ID, err)
	}
	return player, nil
}

// ListPlayers returns all players.
func (ps *PlayerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := ps.players.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to list players: %w", err)
	}
	return players, nil
}

// DeletePlayer removes a player, pulls them out of any group that still
// references them and prunes groups left empty by the removal.
func (ps *PlayerService) DeletePlayer(ctx context.Context, id string) error {
	if err := ps.players.DeletePlayer(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("service failed to delete player: %w", err)
	}
	if err := ps.groups.RemovePlayerFromAllGroups(ctx, id); err != nil {
		return fmt.Errorf("service failed to repair group membership: %w", err)
	}
	if err := ps.groups.DeleteEmptyGroups(ctx); err != nil {
		return fmt.Errorf("service failed to prune empty groups: %w", err)
	}
	return nil
}
