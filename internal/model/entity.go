// Package model defines the typed entities stored as records, with explicit
// mappings to and from record.Record.
package model

import (
	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/record"
)

// Expense categories.
const (
	CategoryMaterial = "material"
	CategoryLabor    = "labor"
	CategoryFreight  = "freight"
	CategoryTools    = "tools"
	CategoryOther    = "other"
)

// PaymentCash is the default payment method.
const PaymentCash = "cash"

// MaterialStatus is the purchase lifecycle of a material.
type MaterialStatus string

const (
	MaterialPending   MaterialStatus = "pending"
	MaterialBought    MaterialStatus = "bought"
	MaterialDelivered MaterialStatus = "delivered"
	MaterialApplied   MaterialStatus = "applied"
)

// MaterialStatuses lists material statuses in lifecycle order.
func MaterialStatuses() []MaterialStatus {
	return []MaterialStatus{MaterialPending, MaterialBought, MaterialDelivered, MaterialApplied}
}

// TaskStatus is the progress state of a scheduled task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
	TaskLate       TaskStatus = "late"
)

// TaskStatuses lists task statuses.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskPending, TaskInProgress, TaskDone, TaskLate}
}

// Billing types for professionals.
const (
	BillingDaily    = "daily"
	BillingContract = "contract"
)

// Record field names shared by several entities.
const (
	FieldRoom        = "room"
	FieldStatus      = "status"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldDate        = "date"
	FieldCategory    = "category"
)

// Expense is money spent on the renovation.
type Expense struct {
	ID                 string          `json:"id"`
	Description        string          `json:"description" validate:"required"`
	Amount             decimal.Decimal `json:"amount" validate:"gt=0"`
	Date               string          `json:"date" validate:"required,datetime=2006-01-02"`
	Category           string          `json:"category" validate:"required"`
	Room               string          `json:"room" validate:"required"`
	PaymentMethod      string          `json:"paymentMethod"`
	ReceiptID          string          `json:"receiptId"`
	InstallmentCurrent int             `json:"installmentCurrent" validate:"gte=0,ltefield=InstallmentTotal"`
	InstallmentTotal   int             `json:"installmentTotal" validate:"gte=0"`
	CreatedAt          string          `json:"createdAt"`
}

// ToRecord maps e to record fields. System fields are left to the store.
func (e Expense) ToRecord() record.Record {
	r := record.Record{
		FieldDescription: e.Description,
		FieldAmount:      e.Amount.InexactFloat64(),
		FieldDate:        e.Date,
		FieldCategory:    e.Category,
		FieldRoom:        e.Room,
		"paymentMethod":  e.PaymentMethod,
	}
	if e.ReceiptID != "" {
		r["receiptId"] = e.ReceiptID
	}
	if e.InstallmentTotal > 0 {
		r["installmentCurrent"] = e.InstallmentCurrent
		r["installmentTotal"] = e.InstallmentTotal
	}
	return r
}

// ExpenseFromRecord maps a stored record to an Expense.
func ExpenseFromRecord(r record.Record) Expense {
	return Expense{
		ID:                 r.ID(),
		Description:        r.String(FieldDescription),
		Amount:             r.Decimal(FieldAmount),
		Date:               r.String(FieldDate),
		Category:           r.String(FieldCategory),
		Room:               r.String(FieldRoom),
		PaymentMethod:      r.String("paymentMethod"),
		ReceiptID:          r.String("receiptId"),
		InstallmentCurrent: int(r.Decimal("installmentCurrent").IntPart()),
		InstallmentTotal:   int(r.Decimal("installmentTotal").IntPart()),
		CreatedAt:          r.String(record.FieldCreatedAt),
	}
}

// Material is an item to buy, priced per unit.
type Material struct {
	ID        string          `json:"id"`
	Name      string          `json:"name" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	Unit      string          `json:"unit" validate:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Room      string          `json:"room" validate:"required"`
	Status    MaterialStatus  `json:"status" validate:"oneof=pending bought delivered applied"`
}

// Cost is quantity times unit price.
func (m Material) Cost() decimal.Decimal {
	return m.Quantity.Mul(m.UnitPrice)
}

func (m Material) ToRecord() record.Record {
	return record.Record{
		"name":      m.Name,
		"quantity":  m.Quantity.InexactFloat64(),
		"unit":      m.Unit,
		"unitPrice": m.UnitPrice.InexactFloat64(),
		FieldRoom:   m.Room,
		FieldStatus: string(m.Status),
	}
}

func MaterialFromRecord(r record.Record) Material {
	return Material{
		ID:        r.ID(),
		Name:      r.String("name"),
		Quantity:  r.Decimal("quantity"),
		Unit:      r.String("unit"),
		UnitPrice: r.Decimal("unitPrice"),
		Room:      r.String(FieldRoom),
		Status:    MaterialStatus(r.String(FieldStatus)),
	}
}

// Task is a scheduled piece of work.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description" validate:"required"`
	Room        string     `json:"room" validate:"required"`
	StartDate   string     `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string     `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Assignee    string     `json:"assignee"`
	Status      TaskStatus `json:"status" validate:"oneof=pending in-progress done late"`
}

func (t Task) ToRecord() record.Record {
	return record.Record{
		FieldDescription: t.Description,
		FieldRoom:        t.Room,
		"startDate":      t.StartDate,
		"endDate":        t.EndDate,
		"assignee":       t.Assignee,
		FieldStatus:      string(t.Status),
	}
}

func TaskFromRecord(r record.Record) Task {
	return Task{
		ID:          r.ID(),
		Description: r.String(FieldDescription),
		Room:        r.String(FieldRoom),
		StartDate:   r.String("startDate"),
		EndDate:     r.String("endDate"),
		Assignee:    r.String("assignee"),
		Status:      TaskStatus(r.String(FieldStatus)),
	}
}

// Professional is a worker hired for the renovation.
type Professional struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Specialty   string          `json:"specialty"`
	Contact     string          `json:"contact"`
	BillingType string          `json:"billingType" validate:"oneof=daily contract"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

func (p Professional) ToRecord() record.Record {
	return record.Record{
		"name":        p.Name,
		"specialty":   p.Specialty,
		"contact":     p.Contact,
		"billingType": p.BillingType,
		"rate":        p.Rate.InexactFloat64(),
	}
}

func ProfessionalFromRecord(r record.Record) Professional {
	return Professional{
		ID:          r.ID(),
		Name:        r.String("name"),
		Specialty:   r.String("specialty"),
		Contact:     r.String("contact"),
		BillingType: r.String("billingType"),
		Rate:        r.Decimal("rate"),
	}
}

// Payment is money paid to a professional.
type Payment struct {
	ID             string          `json:"id"`
	ProfessionalID string          `json:"professionalId" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Date           string          `json:"date" validate:"required,datetime=2006-01-02"`
	Description    string          `json:"description"`
}

func (p Payment) ToRecord() record.Record {
	return record.Record{
		"professionalId": p.ProfessionalID,
		FieldAmount:      p.Amount.InexactFloat64(),
		FieldDate:        p.Date,
		FieldDescription: p.Description,
	}
}

func PaymentFromRecord(r record.Record) Payment {
	return Payment{
		ID:             r.ID(),
		ProfessionalID: r.String("professionalId"),
		Amount:         r.Decimal(FieldAmount),
		Date:           r.String(FieldDate),
		Description:    r.String(FieldDescription),
	}
}

// Supplier is a store or vendor that quotes prices.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"required"`
	Kind    string `json:"kind"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

func (s Supplier) ToRecord() record.Record {
	return record.Record{
		"name":    s.Name,
		"kind":    s.Kind,
		"contact": s.Contact,
		"address": s.Address,
	}
}

func SupplierFromRecord(r record.Record) Supplier {
	return Supplier{
		ID:      r.ID(),
		Name:    r.String("name"),
		Kind:    r.String("kind"),
		Contact: r.String("contact"),
		Address: r.String("address"),
	}
}

// Quote is a supplier's price for a material.
type Quote struct {
	ID         string          `json:"id"`
	SupplierID string          `json:"supplierId" validate:"required"`
	Material   string          `json:"material" validate:"required"`
	Price      decimal.Decimal `json:"price" validate:"gt=0"`
	Unit       string          `json:"unit"`
	Notes      string          `json:"notes"`
}

func (q Quote) ToRecord() record.Record {
	return record.Record{
		"supplierId": q.SupplierID,
		"material":   q.Material,
		"price":      q.Price.InexactFloat64(),
		"unit":       q.Unit,
		"notes":      q.Notes,
	}
}

func QuoteFromRecord(r record.Record) Quote {
	return Quote{
		ID:         r.ID(),
		SupplierID: r.String("supplierId"),
		Material:   r.String("material"),
		Price:      r.Decimal("price"),
		Unit:       r.String("unit"),
		Notes:      r.String("notes"),
	}
}
