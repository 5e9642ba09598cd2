// Package schedule reconciles and orders renovation tasks.
package schedule

import (
	"cmp"
	"slices"
	"time"

	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
)

// Store is the record access the schedule needs.
type Store interface {
	ListAll(c record.Collection) []record.Record
	Update(c record.Collection, id string, partial record.Record) (record.Record, bool, error)
}

// Overdue reports whether a task ended before today without being done.
func Overdue(t model.Task, today string) bool {
	return t.EndDate != "" && t.EndDate < today && t.Status != model.TaskDone
}

// ReconcileOverdue marks overdue tasks as late and returns their ids.
// Tasks already late are left alone.
func ReconcileOverdue(s Store, today time.Time) ([]string, error) {
	day := today.Format(record.DateFormat)
	var changed []string
	for _, r := range s.ListAll(record.Tasks) {
		t := model.TaskFromRecord(r)
		if !Overdue(t, day) || t.Status == model.TaskLate {
			continue
		}
		if _, _, err := s.Update(record.Tasks, t.ID, record.Record{model.FieldStatus: string(model.TaskLate)}); err != nil {
			return changed, err
		}
		changed = append(changed, t.ID)
	}
	return changed, nil
}

func rank(s model.TaskStatus) int {
	switch s {
	case model.TaskLate:
		return 0
	case model.TaskInProgress:
		return 1
	case model.TaskDone:
		return 3
	default:
		return 2
	}
}

// Sort orders tasks late first, then in progress, pending and done, each
// group by start date. Unknown statuses sort with pending.
func Sort(tasks []model.Task) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		if c := cmp.Compare(rank(a.Status), rank(b.Status)); c != 0 {
			return c
		}
		return cmp.Compare(a.StartDate, b.StartDate)
	})
}
