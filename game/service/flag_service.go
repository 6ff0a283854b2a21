// game/service/flag_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/models"
)

// FlagService encapsulates admin-side flag management.
type FlagService struct {
	flags FlagStore
}

// NewFlagService creates a new FlagService instance.
func NewFlagService(flags FlagStore) *FlagService {
	return &FlagService{
		flags: flags,
	}
}

// CreateFlag registers a new challenge flag. Codes are unique across all
// sets; base points must be positive.
func (fs *FlagService) CreateFlag(ctx context.Context, title, description, link, code string, points float64, setNumber int) (*models.Flag, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoints, points)
	}
	if setNumber < models.MinFlagSet || setNumber > models.MaxFlagSet {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFlagSet, setNumber)
	}

	now := time.Now()
	flag := &models.Flag{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Link:        link,
		Code:        code,
		Points:      points,
		SetNumber:   setNumber,
		CreatedAt:   &now,
	}
	if err := fs.flags.InsertFlag(ctx, flag); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateFlagCode
		}
		return nil, fmt.Errorf("service failed to create flag: %w", err)
	}
	return flag, nil
}

// ListFlags returns all flags, newest first.
func (fs *FlagService) ListFlags(ctx context.Context) ([]models.Flag, error) {
	flags, err := fs.flags.ListFlags(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to list flags: %w", err)
	}
	return flags, nil
}

// DeleteFlag removes a flag.
func (fs *FlagService) DeleteFlag(ctx context.Context, id string) error {
	if err := fs.flags.DeleteFlag(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrFlagNotFound
		}
		return fmt.Errorf("service failed to delete flag: %w", err)
	}
	return nil
}
