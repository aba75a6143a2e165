package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ishemalink/internal/cargo/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	owner := id.UserID(uuid.New())
	base := time.Now()

	for i, manifest := range []string{"M-1", "M-2"} {
		require.NoError(t, s.Create(ctx, &models.Cargo{
			ID: id.CargoID(uuid.New()), OwnerID: owner, ManifestID: manifest,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	err := s.Create(ctx, &models.Cargo{ID: id.CargoID(uuid.New()), OwnerID: id.UserID(uuid.New()), ManifestID: "M-1"})
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	items, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "M-2", items[0].ManifestID)

	items[0].ManifestID = "mutated"
	again, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "M-2", again[0].ManifestID)
}
