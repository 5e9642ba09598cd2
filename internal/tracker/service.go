// Package tracker is the per-session service behind every command. It
// validates typed entities before they reach the record store, keeps
// related collections consistent and writes each change to the history log.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/reforma-dev/reforma/internal/asset"
	"github.com/reforma-dev/reforma/internal/catalog"
	"github.com/reforma-dev/reforma/internal/history"
	"github.com/reforma-dev/reforma/internal/imagecodec"
	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
	"github.com/reforma-dev/reforma/internal/schedule"
)

// ErrNotFound is returned when an operation targets a missing record or image.
var ErrNotFound = errors.New("not found")

// Recorder appends to the activity log.
type Recorder interface {
	Record(action, entity, recordID, details string) error
}

// AssetStore is the image storage the service needs.
type AssetStore interface {
	Add(ctx context.Context, a asset.Asset) (asset.Asset, error)
	GetAll(ctx context.Context, f asset.Filter) ([]asset.Asset, error)
	GetByID(ctx context.Context, assetID string) (asset.Asset, bool, error)
	FindByHash(ctx context.Context, hash string) ([]asset.Asset, error)
	Remove(ctx context.Context, assetID string) error
	MarkLinked(ctx context.Context, assetID, expenseID string) (bool, error)
	SetPlan(ctx context.Context, room, encoded string) (asset.Asset, error)
	ExportAll(ctx context.Context) ([]asset.Asset, error)
	ImportAll(ctx context.Context, assets []asset.Asset) error
}

// Presets maps image types to their compression settings.
type Presets map[asset.Type]imagecodec.Preset

// DefaultPresets returns the built-in compression settings.
func DefaultPresets() Presets {
	return Presets{
		asset.TypePlan:    imagecodec.Plan,
		asset.TypePhoto:   imagecodec.Photo,
		asset.TypeReceipt: imagecodec.Receipt,
	}
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, string, string) error { return nil }

// Service operates on one data dir's stores.
type Service struct {
	records *record.Store
	assets  AssetStore
	catalog *catalog.Service
	history Recorder
	log     logrus.FieldLogger
	now     func() time.Time
	presets Presets
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHistory sets where changes are logged.
func WithHistory(r Recorder) Option {
	return func(s *Service) { s.history = r }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithPresets overrides image compression settings.
func WithPresets(p Presets) Option {
	return func(s *Service) {
		for t, preset := range p {
			s.presets[t] = preset
		}
	}
}

// New creates a Service. assets may be nil when no image operation is used.
func New(records *record.Store, assets AssetStore, opts ...Option) *Service {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	s := &Service{
		records: records,
		assets:  assets,
		catalog: catalog.NewService(records),
		history: nopRecorder{},
		log:     quiet,
		now:     time.Now,
		presets: DefaultPresets(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Records exposes the record store for read-only queries.
func (s *Service) Records() *record.Store { return s.records }

// Catalog exposes the category and room catalog.
func (s *Service) Catalog() *catalog.Service { return s.catalog }

// Today is the current date as YYYY-MM-DD.
func (s *Service) Today() string {
	return s.now().Format(record.DateFormat)
}

func (s *Service) imageStore() (AssetStore, error) {
	if s.assets == nil {
		return nil, errors.New("image store not configured")
	}
	return s.assets, nil
}

// logChange writes a change to the history. A failing history write is
// logged and never fails the change.
func (s *Service) logChange(action string, c record.Collection, recordID, details string) {
	if err := s.history.Record(action, string(c), recordID, details); err != nil {
		s.log.WithError(err).Warn("writing history")
	}
}

func describe(r record.Record) string {
	for _, k := range []string{"description", "name", "material"} {
		if v := r.String(k); v != "" {
			return v
		}
	}
	return ""
}

func (s *Service) checkRoom(entity, room string) error {
	if !s.catalog.Exists(catalog.KindRoom, room) {
		return &model.ValidationError{Entity: entity, Fields: []model.FieldError{{Field: model.FieldRoom, Rule: "known"}}}
	}
	return nil
}

func (s *Service) create(c record.Collection, entity string, v any, fields record.Record) (record.Record, error) {
	if err := model.Validate(entity, v); err != nil {
		return nil, err
	}
	if room, ok := fields[model.FieldRoom].(string); ok {
		if err := s.checkRoom(entity, room); err != nil {
			return nil, err
		}
	}
	rec, err := s.records.Create(c, fields)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", entity, err)
	}
	s.logChange(history.ActionCreate, c, rec.ID(), describe(rec))
	s.log.WithFields(logrus.Fields{"collection": c, "id": rec.ID()}).Debug("created")
	return rec, nil
}

// AddExpense validates and stores an expense. Missing date, category, room
// and payment method are filled in.
func (s *Service) AddExpense(e model.Expense) (model.Expense, error) {
	e = s.expenseDefaults(e)
	if !s.catalog.Exists(catalog.KindCategory, e.Category) {
		return model.Expense{}, &model.ValidationError{Entity: "expense", Fields: []model.FieldError{{Field: model.FieldCategory, Rule: "known"}}}
	}
	rec, err := s.create(record.Expenses, "expense", e, e.ToRecord())
	if err != nil {
		return model.Expense{}, err
	}
	return model.ExpenseFromRecord(rec), nil
}

func (s *Service) expenseDefaults(e model.Expense) model.Expense {
	if e.Date == "" {
		e.Date = s.Today()
	}
	if e.Category == "" {
		e.Category = catalog.DetectCategory(e.Description)
	}
	if e.Room == "" {
		e.Room = catalog.DetectRoom(e.Description)
	}
	if e.PaymentMethod == "" {
		e.PaymentMethod = model.PaymentCash
	}
	return e
}

// AddMaterial validates and stores a material, pending unless a status is given.
func (s *Service) AddMaterial(m model.Material) (model.Material, error) {
	if m.Status == "" {
		m.Status = model.MaterialPending
	}
	if m.Room == "" {
		m.Room = catalog.DetectRoom(m.Name)
	}
	rec, err := s.create(record.Materials, "material", m, m.ToRecord())
	if err != nil {
		return model.Material{}, err
	}
	return model.MaterialFromRecord(rec), nil
}

// AddTask validates and stores a task.
func (s *Service) AddTask(t model.Task) (model.Task, error) {
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if t.Room == "" {
		t.Room = catalog.DetectRoom(t.Description)
	}
	rec, err := s.create(record.Tasks, "task", t, t.ToRecord())
	if err != nil {
		return model.Task{}, err
	}
	return model.TaskFromRecord(rec), nil
}

// AddProfessional validates and stores a professional, billed daily by default.
func (s *Service) AddProfessional(p model.Professional) (model.Professional, error) {
	if p.BillingType == "" {
		p.BillingType = model.BillingDaily
	}
	rec, err := s.create(record.Professionals, "professional", p, p.ToRecord())
	if err != nil {
		return model.Professional{}, err
	}
	return model.ProfessionalFromRecord(rec), nil
}

// AddPayment stores a payment to an existing professional.
func (s *Service) AddPayment(p model.Payment) (model.Payment, error) {
	if p.Date == "" {
		p.Date = s.Today()
	}
	if p.ProfessionalID != "" {
		if _, ok := s.records.GetByID(record.Professionals, p.ProfessionalID); !ok {
			return model.Payment{}, fmt.Errorf("professional %s: %w", p.ProfessionalID, ErrNotFound)
		}
	}
	rec, err := s.create(record.Payments, "payment", p, p.ToRecord())
	if err != nil {
		return model.Payment{}, err
	}
	return model.PaymentFromRecord(rec), nil
}

// AddSupplier validates and stores a supplier.
func (s *Service) AddSupplier(sup model.Supplier) (model.Supplier, error) {
	rec, err := s.create(record.Suppliers, "supplier", sup, sup.ToRecord())
	if err != nil {
		return model.Supplier{}, err
	}
	return model.SupplierFromRecord(rec), nil
}

// AddQuote stores a price quote from an existing supplier.
func (s *Service) AddQuote(q model.Quote) (model.Quote, error) {
	if q.SupplierID != "" {
		if _, ok := s.records.GetByID(record.Suppliers, q.SupplierID); !ok {
			return model.Quote{}, fmt.Errorf("supplier %s: %w", q.SupplierID, ErrNotFound)
		}
	}
	rec, err := s.create(record.Quotes, "quote", q, q.ToRecord())
	if err != nil {
		return model.Quote{}, err
	}
	return model.QuoteFromRecord(rec), nil
}

// ValidateRecord checks a stored or candidate record against the rules of
// its collection's entity.
func ValidateRecord(c record.Collection, r record.Record) error {
	switch c {
	case record.Expenses:
		return model.Validate("expense", model.ExpenseFromRecord(r))
	case record.Materials:
		return model.Validate("material", model.MaterialFromRecord(r))
	case record.Tasks:
		return model.Validate("task", model.TaskFromRecord(r))
	case record.Professionals:
		return model.Validate("professional", model.ProfessionalFromRecord(r))
	case record.Payments:
		return model.Validate("payment", model.PaymentFromRecord(r))
	case record.Suppliers:
		return model.Validate("supplier", model.SupplierFromRecord(r))
	case record.Quotes:
		return model.Validate("quote", model.QuoteFromRecord(r))
	}
	return fmt.Errorf("unknown collection %q", c)
}

// Update merges partial into a record after checking the result is still
// valid. It reports false when the record does not exist.
func (s *Service) Update(c record.Collection, recordID string, partial record.Record) (record.Record, bool, error) {
	current, ok := s.records.GetByID(c, recordID)
	if !ok {
		return nil, false, nil
	}
	merged := current.Clone()
	for k, v := range partial.WithoutSystemFields() {
		merged[k] = v
	}
	if err := ValidateRecord(c, merged); err != nil {
		return nil, true, err
	}
	if room, ok := partial[model.FieldRoom].(string); ok {
		if err := s.checkRoom(string(c), room); err != nil {
			return nil, true, err
		}
	}

	rec, ok, err := s.records.Update(c, recordID, partial)
	if err != nil || !ok {
		return rec, ok, err
	}
	s.logChange(history.ActionUpdate, c, recordID, describe(rec))
	return rec, true, nil
}

// Remove deletes a record. Removing a professional also removes their
// payments, and removing a supplier removes its quotes.
func (s *Service) Remove(c record.Collection, recordID string) error {
	switch c {
	case record.Professionals:
		return s.removeCascade(c, record.Payments, "professionalId", recordID)
	case record.Suppliers:
		return s.removeCascade(c, record.Quotes, "supplierId", recordID)
	}
	return s.remove(c, recordID)
}

func (s *Service) remove(c record.Collection, recordID string) error {
	rec, ok := s.records.GetByID(c, recordID)
	if !ok {
		return nil
	}
	if err := s.records.Remove(c, recordID); err != nil {
		return fmt.Errorf("removing %s %s: %w", c, recordID, err)
	}
	s.logChange(history.ActionDelete, c, recordID, describe(rec))
	return nil
}

func (s *Service) removeCascade(parent, child record.Collection, key, parentID string) error {
	n, err := s.records.RemoveWhere(child, func(r record.Record) bool {
		return r.String(key) == parentID
	})
	if err != nil {
		return fmt.Errorf("removing %s of %s: %w", child, parentID, err)
	}
	if n > 0 {
		s.logChange(history.ActionDelete, child, parentID, fmt.Sprintf("%d removed with %s", n, parent))
	}
	return s.remove(parent, parentID)
}

// DeleteProfessional removes a professional and their payments.
func (s *Service) DeleteProfessional(professionalID string) error {
	return s.Remove(record.Professionals, professionalID)
}

// DeleteSupplier removes a supplier and its quotes.
func (s *Service) DeleteSupplier(supplierID string) error {
	return s.Remove(record.Suppliers, supplierID)
}

// Duplicate copies a record under a new id. Expenses are dated today;
// materials and tasks start over as pending.
func (s *Service) Duplicate(c record.Collection, recordID string) (record.Record, bool, error) {
	var overrides record.Record
	switch c {
	case record.Expenses:
		overrides = record.Record{model.FieldDate: s.Today()}
	case record.Materials:
		overrides = record.Record{model.FieldStatus: string(model.MaterialPending)}
	case record.Tasks:
		overrides = record.Record{model.FieldStatus: string(model.TaskPending)}
	}
	rec, ok, err := s.records.Duplicate(c, recordID, overrides)
	if err != nil || !ok {
		return rec, ok, err
	}
	s.logChange(history.ActionCreate, c, rec.ID(), "copy of "+recordID)
	return rec, true, nil
}

// SplitInstallments stores an expense as n monthly installments.
func (s *Service) SplitInstallments(e model.Expense, n int) ([]model.Expense, error) {
	parts, err := model.SplitInstallments(s.expenseDefaults(e), n)
	if err != nil {
		return nil, err
	}
	// Validate every part before writing any.
	for _, p := range parts {
		if err := model.Validate("expense", p); err != nil {
			return nil, err
		}
	}
	out := make([]model.Expense, 0, n)
	for _, p := range parts {
		added, err := s.AddExpense(p)
		if err != nil {
			return out, err
		}
		out = append(out, added)
	}
	return out, nil
}

// SetBudget changes one room's budget.
func (s *Service) SetBudget(room string, amount decimal.Decimal) (record.Budget, error) {
	if amount.IsNegative() {
		return record.Budget{}, &model.ValidationError{Entity: "budget", Fields: []model.FieldError{{Field: room, Rule: "gte"}}}
	}
	b, err := s.records.Budget().Set(room, amount)
	if err != nil {
		return record.Budget{}, err
	}
	if err := s.records.SaveBudget(b); err != nil {
		return record.Budget{}, err
	}
	s.logChange(history.ActionUpdate, record.SectionBudget, room, amount.StringFixed(2))
	return b, nil
}

// SetDarkMode changes the dark-mode preference.
func (s *Service) SetDarkMode(on bool) error {
	c := s.records.Config()
	c.DarkMode = on
	return s.records.SaveConfig(c)
}

// ReconcileOverdue marks overdue tasks late.
func (s *Service) ReconcileOverdue() ([]string, error) {
	ids, err := schedule.ReconcileOverdue(s.records, s.now())
	for _, id := range ids {
		s.logChange(history.ActionUpdate, record.Tasks, id, string(model.TaskLate))
	}
	if len(ids) > 0 {
		s.log.WithField("tasks", len(ids)).Info("marked overdue tasks late")
	}
	return ids, err
}
