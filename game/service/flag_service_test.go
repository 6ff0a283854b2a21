// game/service/flag_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFlagValidation(t *testing.T) {
	svc := NewFlagService(newFakeFlagStore())
	ctx := context.Background()

	_, err := svc.CreateFlag(ctx, "Warmup", "", "", "FLG-001", 0, 1)
	assert.ErrorIs(t, err, ErrInvalidPoints)

	_, err = svc.CreateFlag(ctx, "Warmup", "", "", "FLG-001", 100, 0)
	assert.ErrorIs(t, err, ErrInvalidFlagSet)
	_, err = svc.CreateFlag(ctx, "Warmup", "", "", "FLG-001", 100, 7)
	assert.ErrorIs(t, err, ErrInvalidFlagSet)
}

func TestCreateFlagRejectsDuplicateCodeAcrossSets(t *testing.T) {
	svc := NewFlagService(newFakeFlagStore())
	ctx := context.Background()

	_, err := svc.CreateFlag(ctx, "Warmup", "", "", "FLG-001", 100, 1)
	require.NoError(t, err)

	_, err = svc.CreateFlag(ctx, "Copycat", "", "", "FLG-001", 50, 3)
	assert.ErrorIs(t, err, ErrDuplicateFlagCode)
}

func TestDeleteFlag(t *testing.T) {
	flags := newFakeFlagStore()
	svc := NewFlagService(flags)
	ctx := context.Background()

	flag, err := svc.CreateFlag(ctx, "Warmup", "", "", "FLG-001", 100, 1)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFlag(ctx, flag.ID))
	assert.ErrorIs(t, svc.DeleteFlag(ctx, flag.ID), ErrFlagNotFound)
}
