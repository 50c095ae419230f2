// Package lms imports courses and assignments from a learning management
// system and merges them into the gradebook and the task planner.
package lms

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/gradebook"
	"github.com/schoolorganizer/organizer/core/task"
)

var ErrNotConfigured = errors.New("canvas not configured on server")

// minNameSimilarity is the difflib ratio above which two course names match.
const minNameSimilarity = 0.8

type (
	// Source is a remote LMS.
	Source interface {
		// Courses returns the active, accessible courses.
		Courses(ctx context.Context) ([]RemoteCourse, error)
		Assignments(ctx context.Context, courseID int64) ([]RemoteAssignment, error)
	}

	// UpstreamError reports a failed call to the LMS.
	UpstreamError struct {
		Op  string
		Err error
	}

	Options struct {
		DefaultCredits float64
		Concurrency    int
	}

	Service struct {
		source Source
		books  *gradebook.Service
		tasks  *task.Service
		logger core.Logger
		opts   Options
	}
)

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err was caused by the LMS.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// NewService returns an LMS service; a nil source means the LMS is not configured.
func NewService(source Source, books *gradebook.Service, tasks *task.Service, logger core.Logger, opts Options) *Service {
	if opts.DefaultCredits <= 0 {
		opts.DefaultCredits = gradebook.DefaultCredits
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Service{source: source, books: books, tasks: tasks, logger: logger, opts: opts}
}

func (svc *Service) Configured() bool { return svc.source != nil }

func (svc *Service) Courses(ctx context.Context) ([]RemoteCourse, error) {
	if svc.source == nil {
		return nil, ErrNotConfigured
	}
	courses, err := svc.source.Courses(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "fetching courses", Err: err}
	}
	return courses, nil
}

// Import fetches every course and its dated assignments.
// A course whose assignments cannot be fetched is kept without tasks.
func (svc *Service) Import(ctx context.Context) (Import, error) {
	remote, err := svc.Courses(ctx)
	if err != nil {
		return Import{}, err
	}

	imp := Import{Courses: make([]grade.Course, len(remote))}
	perCourse := make([][]task.Task, len(remote))
	for i, rc := range remote {
		imp.Courses[i] = rc.toCourse(svc.opts.DefaultCredits)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(svc.opts.Concurrency)
	for i := range remote {
		i := i
		g.Go(func() error {
			assignments, err := svc.source.Assignments(gctx, remote[i].ID)
			if err != nil {
				svc.logger.Error(fmt.Sprintf("fetching assignments for course %d: %v", remote[i].ID, err), err)
				return nil
			}
			for _, a := range assignments {
				if t, ok := a.toTask(imp.Courses[i].ID); ok {
					perCourse[i] = append(perCourse[i], t)
				}
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return Import{}, err
	}

	imp.Tasks = make([]task.Task, 0)
	for _, tasks := range perCourse {
		imp.Tasks = append(imp.Tasks, tasks...)
	}
	return imp, nil
}

// Sync imports from the LMS and merges the result into local storage.
func (svc *Service) Sync(ctx context.Context) (SyncResult, error) {
	imp, err := svc.Import(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	return svc.Merge(ctx, imp)
}

// Merge stores imp. Imported courses replace the name and term of the local
// course with the same id, or of a local course with a similar name; other
// courses are created. Tasks are upserted by id, keeping local steps,
// estimate and completion.
func (svc *Service) Merge(ctx context.Context, imp Import) (SyncResult, error) {
	var res SyncResult
	locals, err := svc.books.Courses(ctx)
	if err != nil {
		return res, errors.Wrap(err, "querying courses")
	}
	remap := make(map[string]string, len(imp.Courses)) // {imported id: local id}
	claimed := make(map[string]bool)

	for _, c := range imp.Courses {
		local, found := findByID(locals, c.ID, c.ExternalID.String)
		matched := false
		if !found {
			local, found = findSimilar(locals, c.Name, claimed)
			matched = found
		}

		switch {
		case !found:
			if err = svc.books.SaveCourse(ctx, c); err != nil {
				return res, errors.Wrap(err, "saving course")
			}
			res.CoursesCreated++
			remap[c.ID] = c.ID
		default:
			local.Name = c.Name
			local.Term = c.Term
			if !local.ExternalID.Valid {
				local.ExternalID = c.ExternalID
			}
			if err = svc.books.SaveCourse(ctx, local); err != nil {
				return res, errors.Wrap(err, "saving course")
			}
			if matched {
				res.CoursesMatched++
			} else {
				res.CoursesUpdated++
			}
			remap[c.ID] = local.ID
		}
		claimed[remap[c.ID]] = true
	}

	for _, t := range imp.Tasks {
		if t.CourseID.Valid {
			if id, ok := remap[t.CourseID.String]; ok {
				t.CourseID.String = id
			}
		}

		existing, err := svc.tasks.Get(ctx, t.ID)
		switch {
		case err == nil:
			t.Steps = existing.Steps
			t.EstimateHours = existing.EstimateHours
			t.Completed = t.Completed || existing.Completed
			res.TasksUpdated++
		case core.IsNotFound(err):
			res.TasksCreated++
		default:
			return res, errors.Wrap(err, "finding task")
		}
		if err = svc.tasks.Import(ctx, t); err != nil {
			return res, errors.Wrap(err, "saving task")
		}
	}
	return res, nil
}

// findByID looks a course up by id, then by LMS id.
func findByID(courses []grade.Course, id, externalID string) (grade.Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	for _, c := range courses {
		if externalID != "" && c.ExternalID.Valid && c.ExternalID.String == externalID {
			return c, true
		}
	}
	return grade.Course{}, false
}

// findSimilar returns the unclaimed course whose name is most similar to name.
func findSimilar(courses []grade.Course, name string, claimed map[string]bool) (grade.Course, bool) {
	var (
		best      grade.Course
		bestRatio float64
	)
	for _, c := range courses {
		if claimed[c.ID] {
			continue
		}
		if r := NameSimilarity(c.Name, name); r >= minNameSimilarity && r > bestRatio {
			best, bestRatio = c, r
		}
	}
	return best, bestRatio > 0
}

// NameSimilarity returns the difflib ratio of two course names, ignoring case
// and surrounding whitespace.
func NameSimilarity(a, b string) float64 {
	a, b = core.CleanString(a, true), core.CleanString(b, true)
	if a == b {
		return 1
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
