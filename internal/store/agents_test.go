package store

import (
	"context"
	"testing"

	"github.com/alextreichler/orderdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAgentCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	agent := &models.Agent{AgentName: "Alice Trading"}
	require.NoError(t, s.CreateAgent(ctx, agent))
	require.NotZero(t, agent.AgentID)

	got, err := s.GetAgentByID(ctx, agent.AgentID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Trading", got.AgentName)

	agent.AgentName = "Alice Trading Ltd"
	require.NoError(t, s.UpdateAgent(ctx, agent))

	all, err := s.GetAllAgents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Alice Trading Ltd", all[0].AgentName)

	require.NoError(t, s.DeleteAgent(ctx, agent.AgentID))
	_, err = s.GetAgentByID(ctx, agent.AgentID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateVanishedAgentIsNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateAgent(context.Background(), &models.Agent{AgentID: 42, AgentName: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateConflictWhenRowStillExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	agent := &models.Agent{AgentName: "Alice"}
	require.NoError(t, s.CreateAgent(ctx, agent))

	// Simulate a concurrent writer invalidating the update.
	require.NoError(t, s.DB.Callback().Update().After("gorm:update").Register("test:lost_update", func(db *gorm.DB) {
		db.RowsAffected = 0
	}))

	agent.AgentName = "Alice 2"
	err := s.UpdateAgent(ctx, agent)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteAgentWithOrdersIsRefused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	_, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: []OrderLine{{ItemID: f.items[0].ItemID, Quantity: 1}}})
	require.NoError(t, err)

	err = s.DeleteAgent(ctx, f.agents[0].AgentID)
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = s.GetAgentByID(ctx, f.agents[0].AgentID)
	assert.NoError(t, err)
}

func TestItemCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	item := f.items[1]
	item.ItemName = "ItemB v2"
	item.UnitPrice = item.UnitPrice.Add(item.UnitPrice)
	require.NoError(t, s.UpdateItem(ctx, &item))

	got, err := s.GetItemByID(ctx, item.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "ItemB v2", got.ItemName)
	assert.Equal(t, "20", got.UnitPrice.String())

	require.NoError(t, s.DeleteItem(ctx, f.items[2].ItemID))
	items, err := s.GetAllItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDeleteItemWithDetailsIsRefused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	_, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: []OrderLine{{ItemID: f.items[1].ItemID, Quantity: 3}}})
	require.NoError(t, err)

	err = s.DeleteItem(ctx, f.items[1].ItemID)
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = s.GetItemByID(ctx, f.items[1].ItemID)
	assert.NoError(t, err)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, s.CreateUser(ctx, &models.User{UserName: "Ann", Email: "ann@example.com", Password: "hash"}))
	err = s.CreateUser(ctx, &models.User{UserName: "Ann 2", Email: "ann@example.com", Password: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.SetUserLock(ctx, "ann@example.com", true))
	user, err = s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Lock)

	assert.ErrorIs(t, s.SetUserLock(ctx, "nobody@example.com", true), ErrNotFound)
}
