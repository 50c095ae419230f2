package grade

import "github.com/volatiletech/null/v8"

// NoLetter is the letter of an ungraded course.
const NoLetter = "-"

// Step is one row of a grading scale: percents >= Min earn Letter and Points.
type Step struct {
	Min    float64 `json:"min"`
	Letter string  `json:"letter"`
	Points float64 `json:"points"`
}

// Scale is ordered by descending Min; the first matching row wins.
type Scale []Step

// DefaultScale is the 4.0 scale used throughout the organizer.
var DefaultScale = Scale{
	{Min: 93, Letter: "A", Points: 4.0},
	{Min: 90, Letter: "A-", Points: 3.7},
	{Min: 87, Letter: "B+", Points: 3.3},
	{Min: 83, Letter: "B", Points: 3.0},
	{Min: 80, Letter: "B-", Points: 2.7},
	{Min: 77, Letter: "C+", Points: 2.3},
	{Min: 73, Letter: "C", Points: 2.0},
	{Min: 70, Letter: "C-", Points: 1.7},
	{Min: 60, Letter: "D", Points: 1.0},
	{Min: 0, Letter: "F", Points: 0.0},
}

// Mark is a letter grade with its GPA points. Points are absent for an
// ungraded course, which is not the same as failing (0.0).
type Mark struct {
	Letter string       `json:"letter"`
	Points null.Float64 `json:"points"`
}

// Mark maps a percent to a letter and GPA points.
func (s Scale) Mark(percent null.Float64) Mark {
	if !valid(percent) {
		return Mark{Letter: NoLetter}
	}
	for _, step := range s {
		if percent.Float64 >= step.Min {
			return Mark{Letter: step.Letter, Points: null.Float64From(step.Points)}
		}
	}
	return Mark{Letter: "F", Points: null.Float64From(0)}
}

// ToMark maps a percent with DefaultScale.
func ToMark(percent null.Float64) Mark {
	return DefaultScale.Mark(percent)
}
