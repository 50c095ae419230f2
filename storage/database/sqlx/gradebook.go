// Package sqlxrepos implements the repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/gradebook"
)

type (
	courseRow struct {
		ID         string      `db:"id"`
		Name       string      `db:"name"`
		Credits    float64     `db:"credits"`
		Term       null.String `db:"term"`
		ExternalID null.String `db:"external_id"`
	}

	itemRow struct {
		ID       string       `db:"id"`
		CourseID null.String  `db:"course_id"`
		Name     string       `db:"name"`
		Category string       `db:"category"`
		Weight   null.Float64 `db:"weight"`
		Percent  null.Float64 `db:"percent"`
	}
)

func (r courseRow) course() grade.Course {
	return grade.Course{ID: r.ID, Name: r.Name, Credits: r.Credits, Term: r.Term, ExternalID: r.ExternalID}
}

func (r itemRow) item() grade.Item {
	return grade.Item{ID: r.ID, CourseID: r.CourseID, Name: r.Name, Category: r.Category, Weight: r.Weight, Percent: r.Percent}
}

type gradebookRepository struct {
	db *sqlx.DB
}

func NewGradebookRepository(db *sqlx.DB) gradebook.Repository {
	return &gradebookRepository{db: db}
}

func (repo *gradebookRepository) QueryCourses(ctx context.Context) ([]grade.Course, error) {
	var rows []courseRow
	q := `SELECT id, name, credits, term, external_id FROM courses ORDER BY position`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]grade.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.course())
	}
	return courses, nil
}

func (repo *gradebookRepository) GetCourse(ctx context.Context, id string) (grade.Course, error) {
	var r courseRow
	q := `SELECT id, name, credits, term, external_id FROM courses WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grade.Course{}, gradebook.ErrCourseNotFound
		}
		return grade.Course{}, errors.Wrap(err, "selecting course")
	}
	return r.course(), nil
}

func (repo *gradebookRepository) SaveCourse(ctx context.Context, c grade.Course) error {
	q := `
	INSERT INTO courses (id, name, credits, term, external_id)
	VALUES (:id, :name, :credits, :term, :external_id)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		credits = EXCLUDED.credits,
		term = EXCLUDED.term,
		external_id = EXCLUDED.external_id`
	row := courseRow{ID: c.ID, Name: c.Name, Credits: c.Credits, Term: c.Term, ExternalID: c.ExternalID}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrap(err, "upserting course")
	}
	return nil
}

func (repo *gradebookRepository) DeleteCourse(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "courses", id, gradebook.ErrCourseNotFound)
}

func (repo *gradebookRepository) QueryItems(ctx context.Context, filter gradebook.ItemFilter) ([]grade.Item, error) {
	q := `SELECT id, course_id, name, category, weight, percent FROM grade_items WHERE TRUE`
	var args []interface{}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		q += ` AND course_id = $1`
	}
	if filter.Orphaned {
		q += ` AND course_id IS NULL`
	}
	q += ` ORDER BY position`

	var rows []itemRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting grade items")
	}
	items := make([]grade.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.item())
	}
	return items, nil
}

func (repo *gradebookRepository) GetItem(ctx context.Context, id string) (grade.Item, error) {
	var r itemRow
	q := `SELECT id, course_id, name, category, weight, percent FROM grade_items WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grade.Item{}, gradebook.ErrItemNotFound
		}
		return grade.Item{}, errors.Wrap(err, "selecting grade item")
	}
	return r.item(), nil
}

func (repo *gradebookRepository) SaveItem(ctx context.Context, it grade.Item) error {
	q := `
	INSERT INTO grade_items (id, course_id, name, category, weight, percent)
	VALUES (:id, :course_id, :name, :category, :weight, :percent)
	ON CONFLICT (id) DO UPDATE SET
		course_id = EXCLUDED.course_id,
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		weight = EXCLUDED.weight,
		percent = EXCLUDED.percent`
	row := itemRow{ID: it.ID, CourseID: it.CourseID, Name: it.Name, Category: it.Category, Weight: it.Weight, Percent: it.Percent}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrap(err, "upserting grade item")
	}
	return nil
}

func (repo *gradebookRepository) DeleteItem(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "grade_items", id, gradebook.ErrItemNotFound)
}

func (repo *gradebookRepository) Clear(ctx context.Context) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"grade_items", "courses"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "clearing %s", table)
		}
	}
	return errors.Wrap(tx.Commit(), "committing")
}

// deleteByID deletes one row of table, returning notFound when none matched.
func deleteByID(ctx context.Context, db *sqlx.DB, table, id string, notFound error) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting deleted rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
