package grade

import "github.com/volatiletech/null/v8"

// OverallGPA returns the credit-weighted GPA of all courses.
//
// overrides maps a course ID to a hypothetical percent that replaces the
// course's own grade items. Courses without points or with credits <= 0 are
// skipped; if none is left the GPA is absent.
func OverallGPA(courses []Course, items []Item, overrides map[string]float64) null.Float64 {
	var sumPoints, sumCredits float64
	for _, c := range courses {
		var override null.Float64
		if pct, ok := overrides[c.ID]; ok {
			override = null.Float64From(pct)
		}
		mark := ToMark(CoursePercent(c.ID, items, override))
		if mark.Points.Valid && c.Credits > 0 {
			sumPoints += mark.Points.Float64 * c.Credits
			sumCredits += c.Credits
		}
	}
	if sumCredits == 0 {
		return null.Float64{}
	}
	return null.Float64From(sumPoints / sumCredits)
}

// WhatIf projects the overall GPA if courseID ended at percent.
// Stored grade items of that course are ignored; other courses are untouched.
func WhatIf(courses []Course, items []Item, courseID string, percent float64) null.Float64 {
	return OverallGPA(courses, items, map[string]float64{courseID: percent})
}
