// Package gradebook stores courses and grade items and feeds snapshots of
// them to the grade engine.
package gradebook

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/grade"
)

var (
	// errors
	ErrCourseNotFound = &core.NotFoundError{Kind: "course"}
	ErrItemNotFound   = &core.NotFoundError{Kind: "grade item"}
)

type (
	Repository interface {
		// QueryCourses returns courses in creation order.
		QueryCourses(ctx context.Context) ([]grade.Course, error)
		GetCourse(ctx context.Context, id string) (grade.Course, error)
		// SaveCourse inserts or replaces a course.
		SaveCourse(ctx context.Context, c grade.Course) error
		DeleteCourse(ctx context.Context, id string) error

		QueryItems(ctx context.Context, filter ItemFilter) ([]grade.Item, error)
		GetItem(ctx context.Context, id string) (grade.Item, error)
		SaveItem(ctx context.Context, it grade.Item) error
		DeleteItem(ctx context.Context, id string) error

		// Clear removes every course and grade item.
		Clear(ctx context.Context) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Courses(ctx context.Context) ([]grade.Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *Service) Course(ctx context.Context, id string) (grade.Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) CreateCourse(ctx context.Context, in CourseInput) (grade.Course, error) {
	if err := in.Validate(svc.validate); err != nil {
		return grade.Course{}, err
	}
	c := grade.Course{ID: core.NewID("course")}
	in.apply(&c)
	if err := svc.repo.SaveCourse(ctx, c); err != nil {
		return grade.Course{}, errors.Wrap(err, "saving course")
	}
	return c, nil
}

func (svc *Service) UpdateCourse(ctx context.Context, id string, in CourseInput) (grade.Course, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return grade.Course{}, err
	}
	if err = in.Validate(svc.validate); err != nil {
		return grade.Course{}, err
	}
	in.apply(&c)
	if err = svc.repo.SaveCourse(ctx, c); err != nil {
		return grade.Course{}, errors.Wrap(err, "saving course")
	}
	return c, nil
}

// SaveCourse stores a course as is; used by importers that own their IDs.
func (svc *Service) SaveCourse(ctx context.Context, c grade.Course) error {
	if c.ID == "" {
		c.ID = core.NewID("course")
	}
	return svc.repo.SaveCourse(ctx, c)
}

// DeleteCourse removes the course only: its grade items are kept, orphaned.
func (svc *Service) DeleteCourse(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) Items(ctx context.Context, filter ItemFilter) ([]grade.Item, error) {
	return svc.repo.QueryItems(ctx, filter)
}

func (svc *Service) Item(ctx context.Context, id string) (grade.Item, error) {
	return svc.repo.GetItem(ctx, id)
}

func (svc *Service) CreateItem(ctx context.Context, in ItemInput) (grade.Item, error) {
	if err := svc.validateItem(ctx, &in); err != nil {
		return grade.Item{}, err
	}
	it := grade.Item{ID: core.NewID("grade")}
	in.apply(&it)
	if err := svc.repo.SaveItem(ctx, it); err != nil {
		return grade.Item{}, errors.Wrap(err, "saving grade item")
	}
	return it, nil
}

func (svc *Service) UpdateItem(ctx context.Context, id string, in ItemInput) (grade.Item, error) {
	it, err := svc.repo.GetItem(ctx, id)
	if err != nil {
		return grade.Item{}, err
	}
	if err = svc.validateItem(ctx, &in); err != nil {
		return grade.Item{}, err
	}
	in.apply(&it)
	if err = svc.repo.SaveItem(ctx, it); err != nil {
		return grade.Item{}, errors.Wrap(err, "saving grade item")
	}
	return it, nil
}

func (svc *Service) DeleteItem(ctx context.Context, id string) error {
	return svc.repo.DeleteItem(ctx, id)
}

func (svc *Service) validateItem(ctx context.Context, in *ItemInput) error {
	if err := in.Validate(svc.validate); err != nil {
		return err
	}
	if in.CourseID.Valid {
		if _, err := svc.repo.GetCourse(ctx, in.CourseID.String); err != nil {
			if core.IsNotFound(err) {
				return core.NewFieldError("course_id", "course not found")
			}
			return errors.Wrap(err, "finding course")
		}
	}
	return nil
}

// Snapshot reads the whole dataset for the grade engine.
func (svc *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying courses")
	}
	items, err := svc.repo.QueryItems(ctx, ItemFilter{})
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying grade items")
	}
	return Snapshot{Courses: courses, Items: items}, nil
}

// Report returns every course's standing and the overall GPA.
func (svc *Service) Report(ctx context.Context) (grade.Report, error) {
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return grade.Report{}, err
	}
	return grade.NewReport(snap.Courses, snap.Items, nil), nil
}

// WhatIf projects the overall GPA if the course ended at percent.
// Nothing is written.
func (svc *Service) WhatIf(ctx context.Context, courseID string, percent float64) (grade.Projection, error) {
	if !core.IsFinite(percent) {
		return grade.Projection{}, core.NewFieldError("percent", "must be a valid number")
	}
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return grade.Projection{}, err
	}
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return grade.Projection{}, err
	}
	return grade.Project(snap.Courses, snap.Items, courseID, percent), nil
}

func (svc *Service) Clear(ctx context.Context) error {
	return svc.repo.Clear(ctx)
}
