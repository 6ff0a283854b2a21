// game/store/player_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ctfarena/arena-services/shared/models"
)

// leaderboardSort orders players by score (highest first), ties broken by the
// earlier submission time.
var leaderboardSort = bson.D{
	{Key: "score", Value: -1},
	{Key: "last_submission_time", Value: 1},
}

// PlayerStore represents the MongoDB data store for player profiles.
type PlayerStore struct {
	collection *mongo.Collection
}

// NewPlayerStore creates a new PlayerStore instance.
func NewPlayerStore(collection *mongo.Collection) *PlayerStore {
	return &PlayerStore{
		collection: collection,
	}
}

// CreatePlayer inserts a new player document into the collection.
func (ps *PlayerStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	_, err := ps.collection.InsertOne(ctx, player)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("player with handle %s: %w", player.Whatsapp, ErrDuplicate)
		}
		return fmt.Errorf("failed to create player %s: %w", player.ID, err)
	}
	return nil
}

// GetPlayer retrieves a player by ID.
func (ps *PlayerStore) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	var player models.Player
	err := ps.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &player, nil
}

// GetPlayerByWhatsapp retrieves a player by their unique contact handle.
func (ps *PlayerStore) GetPlayerByWhatsapp(ctx context.Context, whatsapp string) (*models.Player, error) {
	var player models.Player
	err := ps.collection.FindOne(ctx, bson.M{"whatsapp": whatsapp}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("player with handle %s: %w", whatsapp, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get player by handle: %w", err)
	}
	return &player, nil
}

// ListPlayers retrieves all player documents.
func (ps *PlayerStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	cursor, err := ps.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find players: %w", err)
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err = cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	return players, nil
}

// ListPlayersByIDs retrieves the players referenced by a group.
func (ps *PlayerStore) ListPlayersByIDs(ctx context.Context, ids []string) ([]models.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := ps.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find players by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err = cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players by ids: %w", err)
	}
	return players, nil
}

// ListUngroupedPlayers returns players with no group that have not played
// yet, oldest registration first. Used by batch auto-assignment.
func (ps *PlayerStore) ListUngroupedPlayers(ctx context.Context) ([]models.Player, error) {
	filter := bson.M{
		"$or":            bson.A{bson.M{"group_id": ""}, bson.M{"group_id": bson.M{"$exists": false}}},
		"already_played": bson.M{"$ne": true},
	}
	opts := optionsFindSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := ps.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ungrouped players: %w", err)
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err = cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode ungrouped players: %w", err)
	}
	return players, nil
}

// DeletePlayer removes a player document entirely.
func (ps *PlayerStore) DeletePlayer(ctx context.Context, id string) error {
	res, err := ps.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetPlayerGroup assigns a player to a group.
func (ps *PlayerStore) SetPlayerGroup(ctx context.Context, playerID, groupID string) error {
	res, err := ps.collection.UpdateOne(ctx, bson.M{"_id": playerID}, bson.M{"$set": bson.M{"group_id": groupID}})
	if err != nil {
		return fmt.Errorf("failed to set group for player %s: %w", playerID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	return nil
}

// ClearPlayerGroup removes a player's group reference.
func (ps *PlayerStore) ClearPlayerGroup(ctx context.Context, playerID string) error {
	res, err := ps.collection.UpdateOne(ctx, bson.M{"_id": playerID}, bson.M{"$unset": bson.M{"group_id": 1}})
	if err != nil {
		return fmt.Errorf("failed to clear group for player %s: %w", playerID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	return nil
}

// ApplyAward credits a scored submission: bumps the cumulative score, records
// the solved flag and stamps the submission time in one atomic update.
func (ps *PlayerStore) ApplyAward(ctx context.Context, playerID string, points float64, flagID string, at time.Time) error {
	update := bson.M{
		"$inc":      bson.M{"score": points},
		"$addToSet": bson.M{"solved_flags": flagID},
		"$set":      bson.M{"last_submission_time": at},
	}
	res, err := ps.collection.UpdateOne(ctx, bson.M{"_id": playerID}, update)
	if err != nil {
		return fmt.Errorf("failed to apply award to player %s: %w", playerID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	return nil
}

// AddExtraTime grants extra personal seconds on top of the shared round clock.
func (ps *PlayerStore) AddExtraTime(ctx context.Context, playerID string, seconds int64) error {
	res, err := ps.collection.UpdateOne(ctx, bson.M{"_id": playerID}, bson.M{"$inc": bson.M{"extra_time": seconds}})
	if err != nil {
		return fmt.Errorf("failed to add extra time for player %s: %w", playerID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	return nil
}

// SetPlayersStatus updates the status field for a set of players.
func (ps *PlayerStore) SetPlayersStatus(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := ps.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to set status %q for players: %w", status, err)
	}
	return nil
}

// FinishPlayers marks a round's players as finished and played. The group
// reference is deliberately preserved so the leaderboard can still resolve
// who played the round after it ends.
func (ps *PlayerStore) FinishPlayers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	update := bson.M{"$set": bson.M{
		"status":         models.PlayerStatusFinished,
		"already_played": true,
	}}
	_, err := ps.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update)
	if err != nil {
		return fmt.Errorf("failed to finish players: %w", err)
	}
	return nil
}

// GroupLeaderboard returns the players of one group in leaderboard order.
func (ps *PlayerStore) GroupLeaderboard(ctx context.Context, groupID string) ([]models.Player, error) {
	cursor, err := ps.collection.Find(ctx, bson.M{"group_id": groupID}, optionsFindSort(leaderboardSort))
	if err != nil {
		return nil, fmt.Errorf("failed to find group leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err = cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode group leaderboard: %w", err)
	}
	return players, nil
}

// OverallLeaderboard returns every player in leaderboard order regardless of
// group.
func (ps *PlayerStore) OverallLeaderboard(ctx context.Context) ([]models.Player, error) {
	cursor, err := ps.collection.Find(ctx, bson.M{}, optionsFindSort(leaderboardSort))
	if err != nil {
		return nil, fmt.Errorf("failed to find overall leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err = cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode overall leaderboard: %w", err)
	}
	return players, nil
}
