package inmemdb

import (
	"context"

	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/gradebook"
)

type gradebookRepository struct {
	db *DB
}

func NewGradebookRepository(db *DB) gradebook.Repository {
	return &gradebookRepository{db: db}
}

func (repo *gradebookRepository) QueryCourses(_ context.Context) ([]grade.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.courses.all(), nil
}

func (repo *gradebookRepository) GetCourse(_ context.Context, id string) (grade.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses.get(id); ok {
		return c, nil
	}
	return grade.Course{}, gradebook.ErrCourseNotFound
}

func (repo *gradebookRepository) SaveCourse(_ context.Context, c grade.Course) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.courses.put(c.ID, c)
	return nil
}

func (repo *gradebookRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.courses.delete(id) {
		return gradebook.ErrCourseNotFound
	}
	return nil
}

func (repo *gradebookRepository) QueryItems(_ context.Context, filter gradebook.ItemFilter) ([]grade.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]grade.Item, 0)
	for _, it := range repo.db.items.all() {
		if filter.Match(it) {
			items = append(items, it)
		}
	}
	return items, nil
}

func (repo *gradebookRepository) GetItem(_ context.Context, id string) (grade.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if it, ok := repo.db.items.get(id); ok {
		return it, nil
	}
	return grade.Item{}, gradebook.ErrItemNotFound
}

func (repo *gradebookRepository) SaveItem(_ context.Context, it grade.Item) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.items.put(it.ID, it)
	return nil
}

func (repo *gradebookRepository) DeleteItem(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.items.delete(id) {
		return gradebook.ErrItemNotFound
	}
	return nil
}

func (repo *gradebookRepository) Clear(_ context.Context) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.courses.clear()
	repo.db.items.clear()
	return nil
}
