package retail

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one row of an admin list.
type Record interface {
	RecordID() string
	// SearchFields are the texts a search term is matched against.
	SearchFields() []string
	// Cells are the typed values of the row, in collection header order.
	Cells() []any
}

// Columns renders the cells of r as text.
func Columns(r Record) []string {
	cells := r.Cells()
	rv := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case string:
			rv[i] = v
		case fmt.Stringer:
			rv[i] = v.String()
		default:
			rv[i] = fmt.Sprint(v)
		}
	}
	return rv
}

// now is swapped in tests that depend on the current day.
var now = time.Now

type User struct {
	ID              ID     `json:"id"`
	FullName        string `json:"full_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	CreatedAt       Date   `json:"created_at"`
}

func (u User) RecordID() string { return string(u.ID) }

func (u User) SearchFields() []string {
	return []string{u.FullName, u.Username, u.Email, u.Phone, u.Role}
}

func (u User) Cells() []any {
	return []any{u.ID, u.FullName, u.Username, u.Email, u.Phone, u.Role, u.CreatedAt}
}

type LostItem struct {
	ID         ID              `json:"id"`
	ItemName   string          `json:"item_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	Reason     string          `json:"reason"`
	ReportedBy string          `json:"reported_by"`
	LostOn     Date            `json:"lost_on"`
	Value      Money           `json:"value"`
}

func (l LostItem) RecordID() string { return string(l.ID) }

func (l LostItem) SearchFields() []string {
	return []string{l.ItemName, l.Reason, l.ReportedBy}
}

func (l LostItem) Cells() []any {
	return []any{l.ID, l.ItemName, quantity(l.Quantity, l.Unit), l.Reason, l.ReportedBy, l.LostOn, l.Value}
}

type CreditCustomer struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	CreditLimit Money  `json:"credit_limit"`
	Balance     Money  `json:"balance"`
	DueDate     Date   `json:"due_date"`
}

func (c CreditCustomer) RecordID() string { return string(c.ID) }

func (c CreditCustomer) SearchFields() []string {
	return []string{c.Name, c.Phone, c.Email}
}

// Available is the credit the customer can still draw.
func (c CreditCustomer) Available() Money {
	return Money{c.CreditLimit.Sub(c.Balance.Decimal)}
}

func (c CreditCustomer) Cells() []any {
	return []any{c.ID, c.Name, c.Phone, c.CreditLimit, c.Balance, c.Available(), c.DueDate}
}

// Item is a stock item, sold either by weight or by unit.
type Item struct {
	ID        ID              `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Barcode   string          `json:"barcode,omitempty"`
	Category  string          `json:"category"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice Money           `json:"unit_price"`
}

func (i Item) RecordID() string { return string(i.ID) }

func (i Item) SearchFields() []string {
	return []string{i.Name, i.SKU, i.Barcode, i.Category}
}

func (i Item) Cells() []any {
	unit := i.Unit
	if unit == "" {
		unit = "pcs"
		if i.Type == "weighable" {
			unit = "kg"
		}
	}
	return []any{i.ID, i.Name, i.SKU, i.Category, quantity(i.Quantity, unit), i.UnitPrice}
}

type CommodityRequest struct {
	ID          ID              `json:"id"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	RequestedBy string          `json:"requested_by"`
	Status      string          `json:"status"`
	Note        string          `json:"note,omitempty"`
	RequestedAt Date            `json:"requested_at"`
}

func (r CommodityRequest) RecordID() string { return string(r.ID) }

func (r CommodityRequest) SearchFields() []string {
	return []string{r.ItemName, r.RequestedBy, r.Status, r.Note}
}

func (r CommodityRequest) Cells() []any {
	return []any{r.ID, r.ItemName, quantity(r.Quantity, r.Unit), r.RequestedBy, r.Status, r.RequestedAt}
}

type ExpiringProduct struct {
	ID         ID              `json:"id"`
	Name       string          `json:"name"`
	Batch      string          `json:"batch_no"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	ExpiryDate Date            `json:"expiry_date"`
}

func (p ExpiringProduct) RecordID() string { return string(p.ID) }

func (p ExpiringProduct) SearchFields() []string {
	return []string{p.Name, p.Batch}
}

// DaysLeft counts calendar days until expiry; negative once expired.
func (p ExpiringProduct) DaysLeft() int {
	if p.ExpiryDate.IsZero() {
		return 0
	}
	y, m, d := now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ey, em, ed := p.ExpiryDate.Date()
	expiry := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(today).Hours() / 24)
}

func (p ExpiringProduct) Cells() []any {
	return []any{p.ID, p.Name, p.Batch, quantity(p.Quantity, p.Unit), p.ExpiryDate, p.DaysLeft()}
}

type CostDetail struct {
	ID        ID              `json:"id"`
	ItemName  string          `json:"item_name"`
	Category  string          `json:"category"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  Money           `json:"unit_cost"`
	TotalCost Money           `json:"total_cost"`
}

func (c CostDetail) RecordID() string { return string(c.ID) }

func (c CostDetail) SearchFields() []string {
	return []string{c.ItemName, c.Category}
}

// Total is the reported total cost, or quantity times unit cost when the
// backend left it out.
func (c CostDetail) Total() Money {
	if !c.TotalCost.IsZero() {
		return c.TotalCost
	}
	return Money{c.Quantity.Mul(c.UnitCost.Decimal)}
}

func (c CostDetail) Cells() []any {
	return []any{c.ID, c.ItemName, c.Category, c.Quantity, c.UnitCost, c.Total()}
}

// Quantity is an amount with its unit of measure.
type Quantity struct {
	Amount decimal.Decimal
	Unit   string
}

func quantity(amount decimal.Decimal, unit string) Quantity {
	return Quantity{Amount: amount, Unit: strings.TrimSpace(unit)}
}

func (q Quantity) String() string {
	if q.Unit == "" {
		return q.Amount.String()
	}
	return q.Amount.String() + " " + q.Unit
}
