package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core/task"
)

const taskColumns = `id, title, course_id, type, due, estimate_hours, completed, steps`

type taskRow struct {
	ID            string       `db:"id"`
	Title         string       `db:"title"`
	CourseID      null.String  `db:"course_id"`
	Type          string       `db:"type"`
	Due           time.Time    `db:"due"`
	EstimateHours null.Float64 `db:"estimate_hours"`
	Completed     bool         `db:"completed"`
	Steps         task.Steps   `db:"steps"`
}

func newTaskRow(t task.Task) taskRow {
	return taskRow{
		ID:            t.ID,
		Title:         t.Title,
		CourseID:      t.CourseID,
		Type:          string(t.Type),
		Due:           t.Due,
		EstimateHours: t.EstimateHours,
		Completed:     t.Completed,
		Steps:         t.Steps,
	}
}

func (r taskRow) task() task.Task {
	return task.Task{
		ID:            r.ID,
		Title:         r.Title,
		CourseID:      r.CourseID,
		Type:          task.Type(r.Type),
		Due:           r.Due.UTC(),
		EstimateHours: r.EstimateHours,
		Completed:     r.Completed,
		Steps:         r.Steps,
	}
}

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) Query(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conds = append(conds, "course_id = $1")
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, "type = $"+strconv.Itoa(len(args)))
	}
	q := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY due, id`

	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

func (repo *taskRepository) Get(ctx context.Context, id string) (task.Task, error) {
	var r taskRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "selecting task")
	}
	return r.task(), nil
}

func (repo *taskRepository) Save(ctx context.Context, t task.Task) error {
	q := `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES (:id, :title, :course_id, :type, :due, :estimate_hours, :completed, :steps)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		course_id = EXCLUDED.course_id,
		type = EXCLUDED.type,
		due = EXCLUDED.due,
		estimate_hours = EXCLUDED.estimate_hours,
		completed = EXCLUDED.completed,
		steps = EXCLUDED.steps`
	if _, err := repo.db.NamedExecContext(ctx, q, newTaskRow(t)); err != nil {
		return errors.Wrap(err, "upserting task")
	}
	return nil
}

func (repo *taskRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "tasks", id, task.ErrNotFound)
}

func (repo *taskRepository) Clear(ctx context.Context) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return errors.Wrap(err, "clearing tasks")
	}
	return nil
}
