// game/store/user_store.go
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ctfarena/arena-services/shared/models"
)

// UserStore represents the MongoDB data store for admin identities.
type UserStore struct {
	collection *mongo.Collection
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(collection *mongo.Collection) *UserStore {
	return &UserStore{
		collection: collection,
	}
}

// GetUserByUsername retrieves an admin user by username.
func (us *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := us.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return &user, nil
}

// InsertUser inserts a new admin user document.
func (us *UserStore) InsertUser(ctx context.Context, user *models.User) error {
	_, err := us.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user %s: %w", user.Username, err)
	}
	return nil
}
