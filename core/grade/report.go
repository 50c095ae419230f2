package grade

import "github.com/volatiletech/null/v8"

type (
	// CourseLine is the standing of one course.
	CourseLine struct {
		Course  Course       `json:"course"`
		Percent null.Float64 `json:"percent"`
		Mark
	}

	// Report is the GPA summary of a snapshot.
	Report struct {
		GPA     null.Float64 `json:"gpa"`
		Courses []CourseLine `json:"courses"`
	}

	// Projection is the answer to "if this course ended at Percent".
	Projection struct {
		CourseID string       `json:"course_id"`
		Percent  float64      `json:"percent"`
		Letter   string       `json:"letter"`
		GPA      null.Float64 `json:"gpa"`
	}
)

// NewReport computes every course line and the overall GPA.
// overrides may be nil; see OverallGPA.
func NewReport(courses []Course, items []Item, overrides map[string]float64) Report {
	rep := Report{
		GPA:     OverallGPA(courses, items, overrides),
		Courses: make([]CourseLine, 0, len(courses)),
	}
	for _, c := range courses {
		var override null.Float64
		if pct, ok := overrides[c.ID]; ok {
			override = null.Float64From(pct)
		}
		pct := CoursePercent(c.ID, items, override)
		rep.Courses = append(rep.Courses, CourseLine{Course: c, Percent: pct, Mark: ToMark(pct)})
	}
	return rep
}

// Project runs a what-if for a single course.
func Project(courses []Course, items []Item, courseID string, percent float64) Projection {
	return Projection{
		CourseID: courseID,
		Percent:  percent,
		Letter:   ToMark(null.Float64From(percent)).Letter,
		GPA:      WhatIf(courses, items, courseID, percent),
	}
}
