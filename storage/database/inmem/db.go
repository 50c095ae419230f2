package inmemdb

import (
	"sync"

	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/task"
)

// table keeps rows in insertion order; replacing a row keeps its position.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (tbl *table[T]) all() []T {
	rows := make([]T, 0, len(tbl.order))
	for _, id := range tbl.order {
		rows = append(rows, tbl.rows[id])
	}
	return rows
}

func (tbl *table[T]) get(id string) (T, bool) {
	row, ok := tbl.rows[id]
	return row, ok
}

func (tbl *table[T]) put(id string, row T) {
	if _, ok := tbl.rows[id]; !ok {
		tbl.order = append(tbl.order, id)
	}
	tbl.rows[id] = row
}

func (tbl *table[T]) delete(id string) bool {
	if _, ok := tbl.rows[id]; !ok {
		return false
	}
	delete(tbl.rows, id)
	for i, oid := range tbl.order {
		if oid == id {
			tbl.order = append(tbl.order[:i], tbl.order[i+1:]...)
			break
		}
	}
	return true
}

func (tbl *table[T]) clear() {
	tbl.rows = make(map[string]T)
	tbl.order = nil
}

// DB is an in-memory database, safe for concurrent use.
type DB struct {
	mutex   sync.RWMutex
	courses *table[grade.Course]
	items   *table[grade.Item]
	tasks   *table[task.Task]
}

func New() *DB {
	return &DB{
		courses: newTable[grade.Course](),
		items:   newTable[grade.Item](),
		tasks:   newTable[task.Task](),
	}
}
