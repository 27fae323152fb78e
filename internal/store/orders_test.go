package store

import (
	"context"
	"testing"
	"time"

	"github.com/alextreichler/orderdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailIDs(details []models.OrderDetail) []int {
	ids := make([]int, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	return ids
}

func countRows(t *testing.T, s *Store, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB.Model(model).Count(&n).Error)
	return n
}

func TestValidLines(t *testing.T) {
	lines := []OrderLine{
		{ItemID: 1, Quantity: 2},
		{ItemID: 0, Quantity: 5},
		{ItemID: 2, Quantity: 0},
		{ItemID: -1, Quantity: 3},
		{ItemID: 3, Quantity: -4},
		{ItemID: 4, Quantity: 1},
	}
	assert.Equal(t, []OrderLine{{ItemID: 1, Quantity: 2}, {ItemID: 4, Quantity: 1}}, ValidLines(lines))
	assert.Empty(t, ValidLines(nil))
}

func TestSaveOrderCreatesOrderWithValidLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	s.SetClock(fixedClock(now))

	order, err := s.SaveOrder(ctx, OrderDraft{
		AgentID: f.agents[0].AgentID,
		Lines: []OrderLine{
			{ItemID: f.items[0].ItemID, Quantity: 3},
			{ItemID: 0, Quantity: 9},
			{ItemID: f.items[1].ItemID, Quantity: 0},
			{ItemID: f.items[2].ItemID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, order.OrderID)
	assert.Equal(t, int64(1), countRows(t, s, &models.Order{}))

	loaded, err := s.GetOrderByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, f.agents[0].AgentID, loaded.AgentID)
	assert.True(t, now.Equal(loaded.OrderDate))
	require.Len(t, loaded.OrderDetails, 2)
	for _, d := range loaded.OrderDetails {
		assert.Equal(t, order.OrderID, d.OrderID)
	}
	assert.Equal(t, f.items[0].ItemID, loaded.OrderDetails[0].ItemID)
	assert.Equal(t, 3, loaded.OrderDetails[0].Quantity)
	assert.Equal(t, f.items[2].ItemID, loaded.OrderDetails[1].ItemID)
	assert.Equal(t, "8.75", loaded.Total().String())
}

func TestSaveOrderWithoutValidLinesWritesNothing(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)

	_, err := s.SaveOrder(context.Background(), OrderDraft{
		AgentID: f.agents[0].AgentID,
		Lines:   []OrderLine{{ItemID: 0, Quantity: 1}, {ItemID: f.items[0].ItemID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrNoValidLines)
	assert.Zero(t, countRows(t, s, &models.Order{}))
	assert.Zero(t, countRows(t, s, &models.OrderDetail{}))
}

func TestSaveOrderReplacesAllDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	lines := []OrderLine{{ItemID: f.items[0].ItemID, Quantity: 2}, {ItemID: f.items[1].ItemID, Quantity: 1}}
	order, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: lines})
	require.NoError(t, err)
	firstIDs := detailIDs(order.OrderDetails)

	// Identical content saved again still gets fresh detail identities.
	again, err := s.SaveOrder(ctx, OrderDraft{OrderID: order.OrderID, AgentID: f.agents[1].AgentID, Lines: lines})
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, again.OrderID)
	secondIDs := detailIDs(again.OrderDetails)
	require.Len(t, secondIDs, 2)
	for _, id := range secondIDs {
		assert.NotContains(t, firstIDs, id)
	}

	loaded, err := s.GetOrderByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, f.agents[1].AgentID, loaded.AgentID)
	assert.ElementsMatch(t, secondIDs, detailIDs(loaded.OrderDetails))
	assert.Equal(t, int64(2), countRows(t, s, &models.OrderDetail{}))
	assert.Equal(t, int64(1), countRows(t, s, &models.Order{}))
}

func TestSaveOrderUpdateWithoutValidLinesKeepsPriorRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	order, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: []OrderLine{{ItemID: f.items[0].ItemID, Quantity: 4}}})
	require.NoError(t, err)
	before, err := s.GetOrderByID(ctx, order.OrderID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = s.SaveOrder(ctx, OrderDraft{OrderID: order.OrderID, AgentID: f.agents[1].AgentID, Lines: []OrderLine{{ItemID: 0, Quantity: 0}}})
		assert.ErrorIs(t, err, ErrNoValidLines)
	}

	after, err := s.GetOrderByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, before.AgentID, after.AgentID)
	assert.Equal(t, detailIDs(before.OrderDetails), detailIDs(after.OrderDetails))
}

func TestSaveOrderUnknownOrder(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)

	_, err := s.SaveOrder(context.Background(), OrderDraft{OrderID: 999, AgentID: f.agents[0].AgentID, Lines: []OrderLine{{ItemID: f.items[0].ItemID, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveOrderRejectsUnknownReferences(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.SaveOrder(ctx, OrderDraft{AgentID: 999, Lines: []OrderLine{{ItemID: f.items[0].ItemID, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: []OrderLine{{ItemID: 999, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidReference)

	assert.Zero(t, countRows(t, s, &models.Order{}))
}

func TestDeleteOrderRemovesDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	keep, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[1].AgentID, Lines: []OrderLine{{ItemID: f.items[2].ItemID, Quantity: 1}}})
	require.NoError(t, err)
	order, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: []OrderLine{
		{ItemID: f.items[0].ItemID, Quantity: 1},
		{ItemID: f.items[1].ItemID, Quantity: 2},
	}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteOrder(ctx, order.OrderID))

	_, err = s.GetOrderByID(ctx, order.OrderID)
	assert.ErrorIs(t, err, ErrNotFound)
	orphans, err := s.GetOrderDetailsByOrder(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	kept, err := s.GetOrderDetailsByOrder(ctx, keep.OrderID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	assert.NoError(t, s.DeleteOrder(ctx, order.OrderID), "deleting a missing order is a no-op")
}

func TestDeleteOrderDetailReportsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	order, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: []OrderLine{
		{ItemID: f.items[0].ItemID, Quantity: 1},
		{ItemID: f.items[1].ItemID, Quantity: 2},
	}})
	require.NoError(t, err)

	orderID, found, err := s.DeleteOrderDetail(ctx, order.OrderDetails[0].ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, order.OrderID, orderID)

	left, err := s.GetOrderDetailsByOrder(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, []int{order.OrderDetails[1].ID}, detailIDs(left))

	_, found, err = s.DeleteOrderDetail(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOrderDetailCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)
	order := &models.Order{AgentID: f.agents[0].AgentID}
	require.NoError(t, s.CreateOrder(ctx, order))
	require.False(t, order.OrderDate.IsZero())

	bad := &models.OrderDetail{OrderID: order.OrderID, ItemID: f.items[0].ItemID, Quantity: 0}
	assert.ErrorIs(t, s.CreateOrderDetail(ctx, bad), models.ErrInvalidQuantity)

	orphan := &models.OrderDetail{OrderID: 999, ItemID: f.items[0].ItemID, Quantity: 1}
	assert.ErrorIs(t, s.CreateOrderDetail(ctx, orphan), ErrInvalidReference)

	detail := &models.OrderDetail{OrderID: order.OrderID, ItemID: f.items[0].ItemID, Quantity: 2}
	require.NoError(t, s.CreateOrderDetail(ctx, detail))

	detail.ItemID = f.items[1].ItemID
	detail.Quantity = 5
	require.NoError(t, s.UpdateOrderDetail(ctx, detail))

	got, err := s.GetOrderDetailByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, "ItemB", got.Item.ItemName)
	assert.Equal(t, "50", got.Total().String())

	detail.Quantity = 0
	assert.ErrorIs(t, s.UpdateOrderDetail(ctx, detail), models.ErrInvalidQuantity)

	gone := &models.OrderDetail{ID: 777, OrderID: order.OrderID, ItemID: f.items[0].ItemID, Quantity: 1}
	assert.ErrorIs(t, s.UpdateOrderDetail(ctx, gone), ErrNotFound)
}

func TestUpdateOrderKeepsIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)
	order := &models.Order{AgentID: f.agents[0].AgentID, OrderDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateOrder(ctx, order))
	id := order.OrderID

	order.AgentID = f.agents[1].AgentID
	require.NoError(t, s.UpdateOrder(ctx, order))

	got, err := s.GetOrderByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bob Supplies", got.Agent.AgentName)

	order.AgentID = 999
	assert.ErrorIs(t, s.UpdateOrder(ctx, order), ErrInvalidReference)
}

func TestDisplayOrdersFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)
	s.SetClock(fixedClock(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
	_, err := s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[0].AgentID, Lines: []OrderLine{{ItemID: f.items[0].ItemID, Quantity: 1}}})
	require.NoError(t, err)
	s.SetClock(fixedClock(time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)))
	_, err = s.SaveOrder(ctx, OrderDraft{AgentID: f.agents[1].AgentID, Lines: []OrderLine{{ItemID: f.items[1].ItemID, Quantity: 2}}})
	require.NoError(t, err)

	all, err := s.DisplayOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Bob Supplies", all[0].Agent.AgentName, "newest first")
	require.Len(t, all[0].OrderDetails, 1)
	assert.Equal(t, "ItemB", all[0].OrderDetails[0].Item.ItemName)

	filtered, err := s.DisplayOrders(ctx, "aLiCe")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Alice Trading", filtered[0].Agent.AgentName)

	none, err := s.DisplayOrders(ctx, "zed")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDisplayOrdersFilterIsLiteral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seed(t, s)
	promo := &models.Agent{AgentName: "50%_Off! Traders"}
	require.NoError(t, s.CreateAgent(ctx, promo))
	for _, agentID := range []int{f.agents[0].AgentID, f.agents[1].AgentID, promo.AgentID} {
		_, err := s.SaveOrder(ctx, OrderDraft{AgentID: agentID, Lines: []OrderLine{{ItemID: f.items[0].ItemID, Quantity: 1}}})
		require.NoError(t, err)
	}

	for _, filter := range []string{"%", "_", "!", "0%_o", "off!"} {
		orders, err := s.DisplayOrders(ctx, filter)
		require.NoError(t, err, filter)
		require.Len(t, orders, 1, filter)
		assert.Equal(t, promo.AgentID, orders[0].AgentID, filter)
	}

	// Unescaped these would match "Alice Trading" and "Bob Supplies".
	for _, filter := range []string{"a%e", "b_b"} {
		orders, err := s.DisplayOrders(ctx, filter)
		require.NoError(t, err, filter)
		assert.Empty(t, orders, filter)
	}
}
