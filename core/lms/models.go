package lms

import (
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/task"
)

type (
	// RemoteCourse is an LMS course the student can access.
	RemoteCourse struct {
		ID   int64       `json:"id"`
		Name string      `json:"name"`
		Term null.String `json:"term"`
	}

	RemoteAssignment struct {
		ID        int64
		Name      string
		DueAt     null.Time
		Submitted bool
	}

	// Import is an LMS dataset mapped to local records.
	Import struct {
		Courses []grade.Course `json:"courses"`
		Tasks   []task.Task    `json:"tasks"`
	}

	SyncResult struct {
		CoursesCreated int `json:"courses_created"`
		CoursesUpdated int `json:"courses_updated"`
		CoursesMatched int `json:"courses_matched"`
		TasksCreated   int `json:"tasks_created"`
		TasksUpdated   int `json:"tasks_updated"`
	}
)

func courseID(remoteID int64) string {
	return "canvas_" + strconv.FormatInt(remoteID, 10)
}

func taskID(remoteID int64) string {
	return "canvas_task_" + strconv.FormatInt(remoteID, 10)
}

// TaskTypeFromName guesses a task type from an assignment name.
func TaskTypeFromName(name string) task.Type {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "quiz"), strings.Contains(name, "test"), strings.Contains(name, "exam"):
		return task.Exam
	case strings.Contains(name, "project"), strings.Contains(name, "lab"):
		return task.Project
	}
	return task.Homework
}

func (rc RemoteCourse) toCourse(credits float64) grade.Course {
	return grade.Course{
		ID:         courseID(rc.ID),
		Name:       rc.Name,
		Credits:    credits,
		Term:       rc.Term,
		ExternalID: null.StringFrom(strconv.FormatInt(rc.ID, 10)),
	}
}

// toTask maps a to a task; ok is false for assignments without a due date.
func (a RemoteAssignment) toTask(localCourseID string) (t task.Task, ok bool) {
	if !a.DueAt.Valid {
		return task.Task{}, false
	}
	title := a.Name
	if title == "" {
		title = "Assignment " + strconv.FormatInt(a.ID, 10)
	}
	return task.Task{
		ID:        taskID(a.ID),
		Title:     title,
		CourseID:  null.StringFrom(localCourseID),
		Type:      TaskTypeFromName(a.Name),
		Due:       a.DueAt.Time.UTC(),
		Completed: a.Submitted,
		Steps:     task.Steps{},
	}, true
}
