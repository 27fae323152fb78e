package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidQuantity is returned by the OrderDetail save hook.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type User struct {
	UserID   int    `gorm:"primaryKey" json:"user_id"`
	UserName string `gorm:"size:100;not null" json:"user_name"`
	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Lock     bool   `gorm:"not null;default:false" json:"lock"`
}

type Agent struct {
	AgentID   int     `gorm:"primaryKey" json:"agent_id"`
	AgentName string  `gorm:"size:100;not null" json:"agent_name"`
	Orders    []Order `gorm:"foreignKey:AgentID" json:"-"`
}

type Item struct {
	ItemID       int             `gorm:"primaryKey" json:"item_id"`
	ItemName     string          `gorm:"size:100;not null" json:"item_name"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	OrderDetails []OrderDetail   `gorm:"foreignKey:ItemID" json:"-"`
}

// Foreign keys are declared from the parent side. The back-pointers only
// serve preloads and never produce constraints.
type Order struct {
	OrderID      int           `gorm:"primaryKey" json:"order_id"`
	OrderDate    time.Time     `gorm:"not null;index" json:"order_date"`
	AgentID      int           `gorm:"not null;index" json:"agent_id"`
	Agent        Agent         `gorm:"foreignKey:AgentID;references:AgentID;-:migration" json:"agent"`
	OrderDetails []OrderDetail `gorm:"foreignKey:OrderID" json:"order_details"`
}

// Total sums the line totals. Details must have their Item loaded.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range o.OrderDetails {
		total = total.Add(d.Total())
	}
	return total
}

type OrderDetail struct {
	ID       int  `gorm:"primaryKey" json:"id"`
	OrderID  int  `gorm:"not null;index" json:"order_id"`
	ItemID   int  `gorm:"not null;index" json:"item_id"`
	Item     Item `gorm:"foreignKey:ItemID;references:ItemID;-:migration" json:"item"`
	Quantity int  `gorm:"not null" json:"quantity"`
}

// Total is quantity times the item's unit price; it is never stored.
func (d OrderDetail) Total() decimal.Decimal {
	return d.Item.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

func (d *OrderDetail) BeforeSave(tx *gorm.DB) error {
	if d.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// All is the migration set, parents before children.
func All() []interface{} {
	return []interface{}{&User{}, &Agent{}, &Item{}, &Order{}, &OrderDetail{}}
}
