package inmemdb

import (
	"context"

	"github.com/schoolorganizer/organizer/core/task"
)

type taskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) Query(_ context.Context, filter task.Filter) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.tasks.all() {
		if filter.Match(t) {
			tasks = append(tasks, copyTask(t))
		}
	}
	return tasks, nil
}

func (repo *taskRepository) Get(_ context.Context, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.tasks.get(id); ok {
		return copyTask(t), nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) Save(_ context.Context, t task.Task) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.tasks.put(t.ID, copyTask(t))
	return nil
}

func (repo *taskRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.tasks.delete(id) {
		return task.ErrNotFound
	}
	return nil
}

func (repo *taskRepository) Clear(_ context.Context) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.tasks.clear()
	return nil
}

// copyTask detaches the steps slice so callers cannot mutate stored rows.
func copyTask(t task.Task) task.Task {
	steps := make(task.Steps, len(t.Steps))
	copy(steps, t.Steps)
	t.Steps = steps
	return t
}
