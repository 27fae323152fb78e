package forms

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoginForm struct {
	Email    string `validate:"required,max=255"`
	Password string `validate:"required"`
}

type AgentForm struct {
	AgentID   int
	AgentName string `validate:"required,max=100"`
}

type ItemForm struct {
	ItemID    int
	ItemName  string          `validate:"required,max=100"`
	UnitPrice decimal.Decimal `validate:"required,gt=0"`
}

// OrderForm is the plain order page; OrderDate is optional on create.
type OrderForm struct {
	OrderID   int
	AgentID   int `validate:"required,gt=0"`
	OrderDate time.Time
}

type OrderDetailForm struct {
	ID       int
	OrderID  int `validate:"required,gt=0"`
	ItemID   int `validate:"required,gt=0"`
	Quantity int `validate:"gte=1"`
}

// OrderEditorForm is posted by the composite order editor. Lines are not
// validated one by one: blank or partial lines are dropped before saving.
type OrderEditorForm struct {
	OrderID int
	AgentID int             `validate:"required,gt=0"`
	Lines   []OrderLineForm `validate:"max=200"`
}

type OrderLineForm struct {
	ID       int
	ItemID   int
	Quantity int
}

// BlankLine is the empty line a new order starts with.
func BlankLine() OrderLineForm { return OrderLineForm{} }
