package record

import "fmt"

// Collection names a record collection.
type Collection string

const (
	Expenses      Collection = "expenses"
	Materials     Collection = "materials"
	Tasks         Collection = "tasks"
	Professionals Collection = "professionals"
	Payments      Collection = "payments"
	Suppliers     Collection = "suppliers"
	Quotes        Collection = "quotes"
)

// Singleton section names.
const (
	SectionBudget = "budget"
	SectionConfig = "config"
)

// KeyPrefix prefixes every storage key.
const KeyPrefix = "reforma_"

// Collections lists every collection in backup order.
func Collections() []Collection {
	return []Collection{Expenses, Materials, Professionals, Payments, Tasks, Suppliers, Quotes}
}

// Sections lists every persisted section: the collections, then the singletons.
func Sections() []string {
	out := make([]string, 0, 9)
	for _, c := range Collections() {
		out = append(out, string(c))
	}
	return append(out, SectionBudget, SectionConfig)
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	for _, c := range Collections() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", name)
}

// Key returns the storage key of the collection.
func (c Collection) Key() string {
	return StorageKey(string(c))
}

// StorageKey maps a section name to its storage key.
func StorageKey(section string) string {
	return KeyPrefix + section
}
