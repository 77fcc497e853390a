package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvgrid/helioserve/internal/store"
)

func TestSiteService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	sites := newMockSiteStore()
	svc := NewSiteService(sites, nil, testLogger())
	userID := uuid.New()

	site, err := svc.CreateSite(ctx, userID, "boulder", 40.0, -105.0, 1650, "America/Denver")
	require.NoError(t, err)
	assert.Equal(t, userID, site.UserID)
	assert.Equal(t, "America/Denver", site.Timezone)

	got, err := svc.GetSite(ctx, userID, site.ID)
	require.NoError(t, err)
	assert.Equal(t, site.ID, got.ID)
}

func TestSiteService_CreateInvalidLatitude(t *testing.T) {
	svc := NewSiteService(newMockSiteStore(), nil, testLogger())

	_, err := svc.CreateSite(context.Background(), uuid.New(), "bad", 95, 0, 0, "")
	assert.Error(t, err)
}

func TestSiteService_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	sites := newMockSiteStore()
	svc := NewSiteService(sites, nil, testLogger())
	owner := uuid.New()
	intruder := uuid.New()

	site, err := svc.CreateSite(ctx, owner, "boulder", 40.0, -105.0, 1650, "")
	require.NoError(t, err)

	_, err = svc.GetSite(ctx, intruder, site.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	err = svc.DeleteSite(ctx, intruder, site.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	site.Name = "renamed"
	err = svc.UpdateSite(ctx, intruder, site)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestSiteService_ListSites(t *testing.T) {
	ctx := context.Background()
	sites := newMockSiteStore()
	svc := NewSiteService(sites, nil, testLogger())
	userID := uuid.New()

	_, err := svc.CreateSite(ctx, userID, "one", 40, -105, 1650, "")
	require.NoError(t, err)
	_, err = svc.CreateSite(ctx, userID, "two", 35, -110, 300, "")
	require.NoError(t, err)
	_, err = svc.CreateSite(ctx, uuid.New(), "other", 50, 10, 0, "")
	require.NoError(t, err)

	listed, err := svc.ListSites(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestSiteService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	sites := newMockSiteStore()
	svc := NewSiteService(sites, nil, testLogger())
	userID := uuid.New()

	site, err := svc.CreateSite(ctx, userID, "boulder", 40.0, -105.0, 1650, "")
	require.NoError(t, err)

	site.Name = "boulder south"
	require.NoError(t, svc.UpdateSite(ctx, userID, site))

	got, err := svc.GetSite(ctx, userID, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "boulder south", got.Name)

	require.NoError(t, svc.DeleteSite(ctx, userID, site.ID))

	_, err = svc.GetSite(ctx, userID, site.ID)
	assert.ErrorIs(t, err, store.ErrSiteNotFound)
}
