// Package grade rolls grade items up into course percents, letter grades
// and a credit-weighted GPA.
//
// Every function here is pure: inputs are read-only snapshots and nothing is
// cached between calls, so they are safe to call concurrently.
// Optional numbers use null.Float64; an invalid value always means "absent"
// and is never read as 0.
package grade

import (
	"math"

	"github.com/volatiletech/null/v8"
)

// Course is a course as seen by the engine. A course with zero credits is
// listed but never weighted into the GPA.
type Course struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Credits    float64     `json:"credits"`
	Term       null.String `json:"term"`
	ExternalID null.String `json:"external_id"`
}

// Item is a single grade entry. Items are associated to a course by CourseID;
// an item without a CourseID is orphaned and counts for no course.
type Item struct {
	ID       string       `json:"id"`
	CourseID null.String  `json:"course_id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Weight   null.Float64 `json:"weight"`  // percentage points of the course grade
	Percent  null.Float64 `json:"percent"` // absent until graded
}

// BelongsTo reports whether the item is attached to the given course.
func (it Item) BelongsTo(courseID string) bool {
	return it.CourseID.Valid && it.CourseID.String == courseID
}

// valid reports whether n holds a usable number.
func valid(n null.Float64) bool {
	return n.Valid && !math.IsNaN(n.Float64) && !math.IsInf(n.Float64, 0)
}

// hasWeight reports whether the item carries a positive weight.
func (it Item) hasWeight() bool {
	return valid(it.Weight) && it.Weight.Float64 > 0
}
