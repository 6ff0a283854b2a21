// game/store/round_store.go
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

// RoundStore represents the MongoDB data store for rounds. All clock writes
// are conditional single-document updates so the countdown driver and admin
// handlers never lose each other's writes.
type RoundStore struct {
	collection *mongo.Collection
}

// NewRoundStore creates a new RoundStore instance.
func NewRoundStore(collection *mongo.Collection) *RoundStore {
	return &RoundStore{
		collection: collection,
	}
}

// InsertRound inserts a new round document.
func (rs *RoundStore) InsertRound(ctx context.Context, round *models.Round) error {
	_, err := rs.collection.InsertOne(ctx, round)
	if err != nil {
		return fmt.Errorf("failed to insert round %s: %w", round.ID, err)
	}
	return nil
}

// ActiveRound retrieves the single active round, or ErrNotFound.
func (rs *RoundStore) ActiveRound(ctx context.Context) (*models.Round, error) {
	var round models.Round
	err := rs.collection.FindOne(ctx, bson.M{"active": true}).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("active round: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	return &round, nil
}

// ActiveRoundBySession retrieves the active round holding the given session
// key, or ErrNotFound.
func (rs *RoundStore) ActiveRoundBySession(ctx context.Context, sessionID string) (*models.Round, error) {
	var round models.Round
	err := rs.collection.FindOne(ctx, bson.M{"active": true, "session_id": sessionID}).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get round by session: %w", err)
	}
	return &round, nil
}

// LatestEndedRound retrieves the most recently archived round, or ErrNotFound.
func (rs *RoundStore) LatestEndedRound(ctx context.Context) (*models.Round, error) {
	var round models.Round
	opts := options.FindOne().SetSort(bson.D{{Key: "end_time", Value: -1}})
	err := rs.collection.FindOne(ctx, bson.M{"active": false}, opts).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("latest ended round: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest ended round: %w", err)
	}
	return &round, nil
}

// ArchiveActiveRounds deactivates any currently active rounds and stamps
// their end time. History is kept, never deleted.
func (rs *RoundStore) ArchiveActiveRounds(ctx context.Context, endTime time.Time) error {
	_, err := rs.collection.UpdateMany(ctx,
		bson.M{"active": true},
		bson.M{"$set": bson.M{"active": false, "end_time": endTime}})
	if err != nil {
		return fmt.Errorf("failed to archive active rounds: %w", err)
	}
	return nil
}

// FinalizeRound archives one round: inactive, end time stamped, clock zeroed.
func (rs *RoundStore) FinalizeRound(ctx context.Context, id string, endTime time.Time) error {
	res, err := rs.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": false, "end_time": endTime, "remaining_time": 0}})
	if err != nil {
		return fmt.Errorf("failed to finalize round %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("round %s: %w", id, ErrNotFound)
	}
	return nil
}

// DecrementActiveRound atomically takes one second off the active round's
// clock and returns the updated document. The conditional filter means a
// concurrent end-round or add-time can never be overwritten by a stale read.
// ErrNotFound when there is no active round with time left.
func (rs *RoundStore) DecrementActiveRound(ctx context.Context) (*models.Round, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var round models.Round
	err := rs.collection.FindOneAndUpdate(ctx,
		bson.M{"active": true, "remaining_time": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"remaining_time": -1}},
		opts,
	).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("active round with time remaining: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to decrement active round: %w", err)
	}
	return &round, nil
}

// AddRemainingTime adds seconds to the active round's clock.
func (rs *RoundStore) AddRemainingTime(ctx context.Context, seconds int64) error {
	res, err := rs.collection.UpdateOne(ctx,
		bson.M{"active": true},
		bson.M{"$inc": bson.M{"remaining_time": seconds}})
	if err != nil {
		return fmt.Errorf("failed to add remaining time: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("active round: %w", ErrNotFound)
	}
	return nil
}

// AddRemainingTimeForGroup adds seconds to the active round's clock only if
// that round belongs to the given group.
func (rs *RoundStore) AddRemainingTimeForGroup(ctx context.Context, groupID string, seconds int64) error {
	res, err := rs.collection.UpdateOne(ctx,
		bson.M{"active": true, "group_id": groupID},
		bson.M{"$inc": bson.M{"remaining_time": seconds}})
	if err != nil {
		return fmt.Errorf("failed to add remaining time for group %s: %w", groupID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("active round for group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// SetRemainingTime overwrites the active round's clock.
func (rs *RoundStore) SetRemainingTime(ctx context.Context, seconds int64) error {
	res, err := rs.collection.UpdateOne(ctx,
		bson.M{"active": true},
		bson.M{"$set": bson.M{"remaining_time": seconds}})
	if err != nil {
		return fmt.Errorf("failed to set remaining time: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("active round: %w", ErrNotFound)
	}
	return nil
}
