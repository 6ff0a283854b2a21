// game/store/flag_store.go
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ctfarena/arena-services/shared/models"
)

// FlagStore represents the MongoDB data store for challenge flags.
type FlagStore struct {
	collection *mongo.Collection
}

// NewFlagStore creates a new FlagStore instance.
func NewFlagStore(collection *mongo.Collection) *FlagStore {
	return &FlagStore{
		collection: collection,
	}
}

// InsertFlag inserts a new flag. Codes are unique across all sets.
func (fs *FlagStore) InsertFlag(ctx context.Context, flag *models.Flag) error {
	_, err := fs.collection.InsertOne(ctx, flag)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("flag code %s: %w", flag.Code, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert flag %s: %w", flag.ID, err)
	}
	return nil
}

// ListFlags retrieves all flags, newest first.
func (fs *FlagStore) ListFlags(ctx context.Context) ([]models.Flag, error) {
	cursor, err := fs.collection.Find(ctx, bson.M{}, optionsFindSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find flags: %w", err)
	}
	defer cursor.Close(ctx)

	var flags []models.Flag
	if err = cursor.All(ctx, &flags); err != nil {
		return nil, fmt.Errorf("failed to decode flags: %w", err)
	}
	return flags, nil
}

// ListFlagsBySet retrieves the flags of one set, the task pool visible to a
// round bound to that set.
func (fs *FlagStore) ListFlagsBySet(ctx context.Context, setNumber int) ([]models.Flag, error) {
	cursor, err := fs.collection.Find(ctx, bson.M{"set_number": setNumber})
	if err != nil {
		return nil, fmt.Errorf("failed to find flags for set %d: %w", setNumber, err)
	}
	defer cursor.Close(ctx)

	var flags []models.Flag
	if err = cursor.All(ctx, &flags); err != nil {
		return nil, fmt.Errorf("failed to decode flags for set %d: %w", setNumber, err)
	}
	return flags, nil
}

// GetFlagByCode retrieves a flag by its secret code.
func (fs *FlagStore) GetFlagByCode(ctx context.Context, code string) (*models.Flag, error) {
	var flag models.Flag
	err := fs.collection.FindOne(ctx, bson.M{"code": code}).Decode(&flag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("flag code: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get flag by code: %w", err)
	}
	return &flag, nil
}

// DeleteFlag removes a flag document.
func (fs *FlagStore) DeleteFlag(ctx context.Context, id string) error {
	res, err := fs.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete flag %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("flag %s: %w", id, ErrNotFound)
	}
	return nil
}
