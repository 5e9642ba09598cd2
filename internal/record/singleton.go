package record

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Default rooms tracked by the budget.
const (
	RoomBBQ     = "bbq"
	RoomBath    = "bath"
	RoomBedroom = "bedroom"
	RoomGeneral = "general"
)

// Budget is the per-room budget singleton.
type Budget struct {
	BBQ     float64 `json:"bbq"`
	Bath    float64 `json:"bath"`
	Bedroom float64 `json:"bedroom"`
	General float64 `json:"general"`
}

// BudgetRooms lists the rooms carried by Budget, in display order.
func BudgetRooms() []string {
	return []string{RoomBBQ, RoomBath, RoomBedroom, RoomGeneral}
}

// For returns the budget of one room; unknown rooms have none.
func (b Budget) For(room string) decimal.Decimal {
	switch room {
	case RoomBBQ:
		return decimal.NewFromFloat(b.BBQ)
	case RoomBath:
		return decimal.NewFromFloat(b.Bath)
	case RoomBedroom:
		return decimal.NewFromFloat(b.Bedroom)
	case RoomGeneral:
		return decimal.NewFromFloat(b.General)
	}
	return decimal.Zero
}

// Set returns a copy of b with room's budget replaced.
func (b Budget) Set(room string, amount decimal.Decimal) (Budget, error) {
	v := amount.InexactFloat64()
	switch room {
	case RoomBBQ:
		b.BBQ = v
	case RoomBath:
		b.Bath = v
	case RoomBedroom:
		b.Bedroom = v
	case RoomGeneral:
		b.General = v
	default:
		return b, fmt.Errorf("no budget for room %q", room)
	}
	return b, nil
}

// Total sums every room.
func (b Budget) Total() decimal.Decimal {
	total := decimal.Zero
	for _, room := range BudgetRooms() {
		total = total.Add(b.For(room))
	}
	return total
}

// Config is the app-configuration singleton.
type Config struct {
	DarkMode         bool     `json:"darkMode"`
	CustomCategories []string `json:"customCategories,omitempty"`
	CustomRooms      []string `json:"customRooms,omitempty"`
}

// Budget returns the stored budget, or the zero budget when absent or corrupt.
func (s *Store) Budget() Budget {
	var b Budget
	if !s.readSingleton(SectionBudget, &b) {
		return Budget{}
	}
	return b
}

// SaveBudget overwrites the budget.
func (s *Store) SaveBudget(b Budget) error {
	return s.writeSingleton(SectionBudget, b)
}

// Config returns the stored config, or {darkMode: false} when absent or corrupt.
func (s *Store) Config() Config {
	var c Config
	if !s.readSingleton(SectionConfig, &c) {
		return Config{}
	}
	return c
}

// SaveConfig overwrites the config.
func (s *Store) SaveConfig(c Config) error {
	return s.writeSingleton(SectionConfig, c)
}

func (s *Store) readSingleton(section string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok, err := s.kv.Get(StorageKey(section))
	if err != nil || !ok {
		return false
	}
	if string(data) == "null" {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (s *Store) writeSingleton(section string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrSave, section, err)
	}
	if err := s.kv.Set(StorageKey(section), data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrSave, section, err)
	}
	return nil
}

// ReadSection returns the stored JSON of a section, or nil when it is absent
// or not valid JSON.
func (s *Store) ReadSection(section string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok, err := s.kv.Get(StorageKey(section))
	if err != nil || !ok || !json.Valid(data) {
		return nil
	}
	return json.RawMessage(data)
}

// WriteSection overwrites a section with raw JSON, without interpreting it.
func (s *Store) WriteSection(section string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !json.Valid(data) {
		return fmt.Errorf("%w: %s is not valid JSON", ErrSave, section)
	}
	if err := s.kv.Set(StorageKey(section), data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrSave, section, err)
	}
	return nil
}
