// game/store/group_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ctfarena/arena-services/shared/models"
)

const teamCounterID = "team_name_seq"

// GroupStore represents the MongoDB data store for teams. It also owns the
// monotonic team-name counter document.
type GroupStore struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewGroupStore creates a new GroupStore instance.
func NewGroupStore(collection, counters *mongo.Collection) *GroupStore {
	return &GroupStore{
		collection: collection,
		counters:   counters,
	}
}

// InsertGroup inserts a new group document.
func (gs *GroupStore) InsertGroup(ctx context.Context, group *models.Group) error {
	_, err := gs.collection.InsertOne(ctx, group)
	if err != nil {
		return fmt.Errorf("failed to insert group %s: %w", group.ID, err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (gs *GroupStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := gs.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get group %s: %w", id, err)
	}
	return &group, nil
}

// ListGroups retrieves all groups ordered by their scheduled start time.
func (gs *GroupStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	cursor, err := gs.collection.Find(ctx, bson.M{}, optionsFindSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []models.Group
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}
	return groups, nil
}

// ListPendingGroups retrieves the groups whose round has not completed yet,
// ordered by scheduled start time. Used by bulk rescheduling.
func (gs *GroupStore) ListPendingGroups(ctx context.Context) ([]models.Group, error) {
	cursor, err := gs.collection.Find(ctx,
		bson.M{"round_completed": false},
		optionsFindSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find pending groups: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []models.Group
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode pending groups: %w", err)
	}
	return groups, nil
}

// NextTeamNumber atomically increments and returns the team-name sequence.
// A single counter document replaces scanning existing names for the highest
// numeric suffix.
func (gs *GroupStore) NextTeamNumber(ctx context.Context) (int, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := gs.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": teamCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to advance team counter: %w", err)
	}
	return counter.Seq, nil
}

// LatestStartTime returns the most distant scheduled group start time.
// Returns ErrNotFound when no groups exist.
func (gs *GroupStore) LatestStartTime(ctx context.Context) (time.Time, error) {
	var group models.Group
	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})
	err := gs.collection.FindOne(ctx, bson.M{}, opts).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return time.Time{}, fmt.Errorf("latest group start time: %w", ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to get latest group start time: %w", err)
	}
	return group.StartTime, nil
}

// AddPlayer adds a player reference to a group, idempotently.
func (gs *GroupStore) AddPlayer(ctx context.Context, groupID, playerID string) error {
	res, err := gs.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$addToSet": bson.M{"players": playerID}})
	if err != nil {
		return fmt.Errorf("failed to add player %s to group %s: %w", playerID, groupID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// RemovePlayer removes a player reference from a group.
func (gs *GroupStore) RemovePlayer(ctx context.Context, groupID, playerID string) error {
	res, err := gs.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$pull": bson.M{"players": playerID}})
	if err != nil {
		return fmt.Errorf("failed to remove player %s from group %s: %w", playerID, groupID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// RemovePlayerFromAllGroups pulls a deleted player out of any group that
// still references them.
func (gs *GroupStore) RemovePlayerFromAllGroups(ctx context.Context, playerID string) error {
	_, err := gs.collection.UpdateMany(ctx,
		bson.M{"players": playerID},
		bson.M{"$pull": bson.M{"players": playerID}})
	if err != nil {
		return fmt.Errorf("failed to remove player %s from groups: %w", playerID, err)
	}
	return nil
}

// DeleteEmptyGroups prunes groups that no longer hold any players.
func (gs *GroupStore) DeleteEmptyGroups(ctx context.Context) error {
	_, err := gs.collection.DeleteMany(ctx, bson.M{"players": bson.M{"$size": 0}})
	if err != nil {
		return fmt.Errorf("failed to delete empty groups: %w", err)
	}
	return nil
}

// SetCurrentGroup flips the current-round marker to exactly one group: all
// groups are cleared first, then the target is set.
func (gs *GroupStore) SetCurrentGroup(ctx context.Context, groupID string) error {
	if _, err := gs.collection.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"current_round": false}}); err != nil {
		return fmt.Errorf("failed to clear current-round markers: %w", err)
	}
	res, err := gs.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$set": bson.M{"current_round": true}})
	if err != nil {
		return fmt.Errorf("failed to mark group %s as current: %w", groupID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// MarkGroupCompleted records that a group's round has ended, excluding it
// from active views.
func (gs *GroupStore) MarkGroupCompleted(ctx context.Context, groupID string) error {
	res, err := gs.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$set": bson.M{"round_completed": true, "current_round": false}})
	if err != nil {
		return fmt.Errorf("failed to mark group %s completed: %w", groupID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// UpdateStartTime sets a group's scheduled slot.
func (gs *GroupStore) UpdateStartTime(ctx context.Context, groupID string, startTime time.Time) error {
	res, err := gs.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$set": bson.M{"start_time": startTime}})
	if err != nil {
		return fmt.Errorf("failed to update start time for group %s: %w", groupID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	return nil
}
