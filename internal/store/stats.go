package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BestSellerLimit is how many items the best-selling report returns.
const BestSellerLimit = 5

type ItemSales struct {
	ItemID        int
	ItemName      string
	TotalQuantity int64
	FirstSeen     int64
}

type AgentPurchaseDetail struct {
	ItemID    int
	ItemName  string
	Quantity  int64
	UnitPrice decimal.Decimal
	Total     decimal.Decimal `gorm:"-"`
}

type ItemPurchaseDetail struct {
	AgentName     string
	OrderDate     time.Time
	TotalQuantity int64
}

// MonthRange returns the first instant of now's calendar month and of the next.
func MonthRange(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// BestSellingItems sums quantities per item over orders dated in now's month,
// highest first. Equal sums keep the order in which the items were first
// ordered (lowest detail id first).
func (s *Store) BestSellingItems(ctx context.Context, now time.Time) ([]ItemSales, error) {
	start, end := MonthRange(now.UTC())

	var rows []ItemSales
	err := s.db(ctx).
		Table("order_details AS od").
		Select("od.item_id AS item_id, i.item_name AS item_name, SUM(od.quantity) AS total_quantity, MIN(od.id) AS first_seen").
		Joins("JOIN orders o ON o.order_id = od.order_id").
		Joins("JOIN items i ON i.item_id = od.item_id").
		Where("o.order_date >= ? AND o.order_date < ?", start, end).
		Group("od.item_id, i.item_name").
		Having("SUM(od.quantity) > 0").
		Order("total_quantity DESC, first_seen ASC").
		Limit(BestSellerLimit).
		Scan(&rows).Error
	return rows, err
}

// ItemsByAgent totals what one agent bought per item.
func (s *Store) ItemsByAgent(ctx context.Context, agentID int) ([]AgentPurchaseDetail, error) {
	var rows []AgentPurchaseDetail
	err := s.db(ctx).
		Table("order_details AS od").
		Select("i.item_id AS item_id, i.item_name AS item_name, i.unit_price AS unit_price, SUM(od.quantity) AS quantity").
		Joins("JOIN orders o ON o.order_id = od.order_id").
		Joins("JOIN items i ON i.item_id = od.item_id").
		Where("o.agent_id = ?", agentID).
		Group("i.item_id, i.item_name, i.unit_price").
		Order("i.item_name, i.item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Total = rows[i].UnitPrice.Mul(decimal.NewFromInt(rows[i].Quantity))
	}
	return rows, nil
}

// AgentsByItem totals how much of one item each agent bought per order date.
func (s *Store) AgentsByItem(ctx context.Context, itemID int) ([]ItemPurchaseDetail, error) {
	var rows []ItemPurchaseDetail
	err := s.db(ctx).
		Table("order_details AS od").
		Select("a.agent_name AS agent_name, o.order_date AS order_date, SUM(od.quantity) AS total_quantity").
		Joins("JOIN orders o ON o.order_id = od.order_id").
		Joins("JOIN agents a ON a.agent_id = o.agent_id").
		Where("od.item_id = ?", itemID).
		Group("a.agent_name, o.order_date").
		Order("o.order_date DESC, a.agent_name").
		Scan(&rows).Error
	return rows, err
}

type DashboardStats struct {
	TotalAgents int64
	TotalItems  int64
	TotalOrders int64
}

func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	if err := s.db(ctx).Table("agents").Count(&stats.TotalAgents).Error; err != nil {
		return nil, err
	}
	if err := s.db(ctx).Table("items").Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := s.db(ctx).Table("orders").Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
