package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alextreichler/orderdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db(ctx).Preload("Agent").Order("order_id").Find(&orders).Error
	return orders, err
}

// GetOrderByID loads the order with its agent and its details joined to items.
func (s *Store) GetOrderByID(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	err := s.db(ctx).
		Preload("Agent").
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("OrderDetails.Item").
		First(&order, "order_id = ?", id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// likeEscaper makes a filter match literally. '!' is used as the escape
// character since a backslash needs doubling in MySQL string literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// DisplayOrders lists orders newest first with agents, details and items.
// A non-empty filter keeps orders whose agent name contains it, ignoring case.
func (s *Store) DisplayOrders(ctx context.Context, agentNameFilter string) ([]models.Order, error) {
	q := s.db(ctx).
		Preload("Agent").
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("OrderDetails.Item")

	if f := strings.TrimSpace(agentNameFilter); f != "" {
		agentIDs := s.db(ctx).Model(&models.Agent{}).
			Select("agent_id").
			Where("LOWER(agent_name) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(f))+"%")
		q = q.Where("agent_id IN (?)", agentIDs)
	}

	var orders []models.Order
	err := q.Order("order_date DESC").Order("order_id DESC").Find(&orders).Error
	return orders, err
}

// CreateOrder inserts a bare order. A zero OrderDate is replaced by now.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.OrderDate.IsZero() {
		order.OrderDate = s.now()
	}
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAgent(tx, order.AgentID); err != nil {
			return err
		}
		return classify(tx.Omit(clause.Associations).Create(order).Error)
	})
}

// UpdateOrder changes the agent and date; the order id never changes.
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	if err := requireAgent(s.db(ctx), order.AgentID); err != nil {
		return err
	}
	res := s.db(ctx).Model(order).Omit(clause.Associations).Select("agent_id", "order_date").Updates(order)
	return s.checkUpdated(ctx, res, &models.Order{}, "order_id", order.OrderID)
}

// OrderLine is one submitted line of the composite order editor.
type OrderLine struct {
	ItemID   int
	Quantity int
}

// OrderDraft is a submission of the composite order editor. OrderID zero
// means a new order.
type OrderDraft struct {
	OrderID int
	AgentID int
	Lines   []OrderLine
}

// ValidLines keeps lines with a positive item id and a quantity of at least one.
func ValidLines(lines []OrderLine) []OrderLine {
	valid := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.ItemID > 0 && l.Quantity >= 1 {
			valid = append(valid, l)
		}
	}
	return valid
}

// SaveOrder creates or updates an order together with its full set of details
// in one transaction. Existing details are always deleted and the valid lines
// inserted as new rows, so detail ids change on every save. If no valid line
// remains nothing is written and ErrNoValidLines is returned.
func (s *Store) SaveOrder(ctx context.Context, draft OrderDraft) (*models.Order, error) {
	var order models.Order
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if draft.OrderID != 0 {
			if err := tx.First(&order, "order_id = ?", draft.OrderID).Error; err != nil {
				return classify(err)
			}
			if err := requireAgent(tx, draft.AgentID); err != nil {
				return err
			}
			order.AgentID = draft.AgentID
			if err := tx.Model(&order).Omit(clause.Associations).Update("agent_id", draft.AgentID).Error; err != nil {
				return classify(err)
			}
			if err := tx.Where("order_id = ?", order.OrderID).Delete(&models.OrderDetail{}).Error; err != nil {
				return classify(err)
			}
		} else {
			if err := requireAgent(tx, draft.AgentID); err != nil {
				return err
			}
			order = models.Order{OrderDate: s.now(), AgentID: draft.AgentID}
			// The order must exist before details can reference its id.
			if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
				return classify(err)
			}
		}

		lines := ValidLines(draft.Lines)
		if len(lines) == 0 {
			return ErrNoValidLines
		}

		details := make([]models.OrderDetail, 0, len(lines))
		for _, l := range lines {
			if err := requireItem(tx, l.ItemID); err != nil {
				return err
			}
			details = append(details, models.OrderDetail{
				ID:       0,
				OrderID:  order.OrderID,
				ItemID:   l.ItemID,
				Quantity: l.Quantity,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&details).Error; err != nil {
			return classify(err)
		}
		order.OrderDetails = details
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes the order's details and then the order. Unknown ids are
// ignored.
func (s *Store) DeleteOrder(ctx context.Context, id int) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.First(&order, "order_id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderDetail{}).Error; err != nil {
			return err
		}
		return classify(tx.Delete(&order).Error)
	})
}

func requireAgent(tx *gorm.DB, id int) error {
	return requireRow(tx, &models.Agent{}, "agent_id", id)
}

func requireItem(tx *gorm.DB, id int) error {
	return requireRow(tx, &models.Item{}, "item_id", id)
}

func requireRow(tx *gorm.DB, model interface{}, pk string, id int) error {
	var count int64
	if err := tx.Model(model).Where(pk+" = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s %d: %w", pk, id, ErrInvalidReference)
	}
	return nil
}
