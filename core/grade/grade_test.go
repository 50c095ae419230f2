package grade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func item(courseID string, weight, percent *float64) Item {
	it := Item{ID: "grade_x", Name: "x", CourseID: null.StringFrom(courseID)}
	it.Weight = null.Float64FromPtr(weight)
	it.Percent = null.Float64FromPtr(percent)
	return it
}

func f(v float64) *float64 { return &v }

func assertPercent(t *testing.T, got null.Float64, want *float64) {
	t.Helper()
	if want == nil {
		assert.False(t, got.Valid, "want absent, got %v", got.Float64)
		return
	}
	if assert.True(t, got.Valid, "want %v, got absent", *want) {
		assert.InDelta(t, *want, got.Float64, 1e-9)
	}
}

func TestCoursePercent(t *testing.T) {
	orphan := Item{ID: "grade_o", Name: "orphan", Weight: null.Float64From(100), Percent: null.Float64From(100)}

	tests := []struct {
		name     string
		items    []Item
		override null.Float64
		want     *float64
	}{
		{name: "no items", want: nil},
		{name: "items of other course only", items: []Item{item("c2", f(100), f(90))}, want: nil},
		{name: "orphaned item ignored", items: []Item{orphan}, want: nil},
		{name: "single full weight", items: []Item{item("c1", f(100), f(85))}, want: f(85)},
		{
			name:  "weighted sum is not renormalised",
			items: []Item{item("c1", f(20), f(100)), item("c1", f(20), f(50))},
			want:  f(30),
		},
		{
			name:  "ungraded weighted item excluded",
			items: []Item{item("c1", f(40), f(90)), item("c1", f(60), nil)},
			want:  f(36),
		},
		{
			name:  "unweighted average",
			items: []Item{item("c1", f(0), f(70)), item("c1", nil, f(90))},
			want:  f(80),
		},
		{
			name:  "negative weight counts as no weight",
			items: []Item{item("c1", f(-10), f(60)), item("c1", nil, f(80))},
			want:  f(70),
		},
		{
			name:  "unweighted average skips ungraded",
			items: []Item{item("c1", nil, f(70)), item("c1", nil, nil)},
			want:  f(70),
		},
		{name: "nothing graded", items: []Item{item("c1", f(50), nil), item("c1", nil, nil)}, want: nil},
		{
			name:  "any positive weight disables the fallback",
			items: []Item{item("c1", f(10), f(100)), item("c1", nil, f(50))},
			want:  f(10),
		},
		{
			name:  "weighted item without percent does not block the fallback",
			items: []Item{item("c1", f(50), nil), item("c1", nil, f(64))},
			want:  f(64),
		},
		{
			name:  "NaN percent is absent",
			items: []Item{item("c1", nil, f(math.NaN())), item("c1", nil, f(88))},
			want:  f(88),
		},
		{
			name:     "override wins",
			items:    []Item{item("c1", f(100), f(50))},
			override: null.Float64From(95),
			want:     f(95),
		},
		{name: "override without items", override: null.Float64From(95), want: f(95)},
		{
			name:     "infinite override is absent",
			items:    []Item{item("c1", f(100), f(50))},
			override: null.Float64From(math.Inf(1)),
			want:     nil,
		},
		{
			name:     "NaN override is absent",
			items:    []Item{item("c1", f(100), f(85))},
			override: null.Float64From(math.NaN()),
			want:     nil,
		},
		{
			name:  "no clamping above 100",
			items: []Item{item("c1", f(100), f(100)), item("c1", f(50), f(100))},
			want:  f(150),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPercent(t, CoursePercent("c1", tt.items, tt.override), tt.want)
		})
	}
}

func TestCoursePercent_orderIndependent(t *testing.T) {
	items := []Item{
		item("c1", f(10), f(91)),
		item("c1", f(25), f(78.5)),
		item("c1", f(15), f(66)),
		item("c1", f(30), f(99)),
	}
	want := 91*0.10 + 78.5*0.25 + 66*0.15 + 99*0.30

	reversed := make([]Item, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}
	for _, set := range [][]Item{items, reversed} {
		assertPercent(t, CoursePercent("c1", set, null.Float64{}), &want)
	}
}

func TestCoursePercent_doesNotMutate(t *testing.T) {
	items := []Item{item("c1", f(40), f(80)), item("c1", nil, nil)}
	before := make([]Item, len(items))
	copy(before, items)

	_ = CoursePercent("c1", items, null.Float64{})
	assert.Equal(t, before, items)
}

func TestScale_Mark(t *testing.T) {
	tests := []struct {
		percent    null.Float64
		wantLetter string
		wantPoints *float64
	}{
		{percent: null.Float64From(100), wantLetter: "A", wantPoints: f(4.0)},
		{percent: null.Float64From(93), wantLetter: "A", wantPoints: f(4.0)},
		{percent: null.Float64From(92.9), wantLetter: "A-", wantPoints: f(3.7)},
		{percent: null.Float64From(90), wantLetter: "A-", wantPoints: f(3.7)},
		{percent: null.Float64From(87), wantLetter: "B+", wantPoints: f(3.3)},
		{percent: null.Float64From(85), wantLetter: "B", wantPoints: f(3.0)},
		{percent: null.Float64From(80), wantLetter: "B-", wantPoints: f(2.7)},
		{percent: null.Float64From(77), wantLetter: "C+", wantPoints: f(2.3)},
		{percent: null.Float64From(73), wantLetter: "C", wantPoints: f(2.0)},
		{percent: null.Float64From(70), wantLetter: "C-", wantPoints: f(1.7)},
		{percent: null.Float64From(60), wantLetter: "D", wantPoints: f(1.0)},
		{percent: null.Float64From(59.9), wantLetter: "F", wantPoints: f(0.0)},
		{percent: null.Float64From(0), wantLetter: "F", wantPoints: f(0.0)},
		{percent: null.Float64From(-5), wantLetter: "F", wantPoints: f(0.0)},
		{percent: null.Float64From(120), wantLetter: "A", wantPoints: f(4.0)},
		{percent: null.Float64{}, wantLetter: NoLetter},
		{percent: null.Float64From(math.NaN()), wantLetter: NoLetter},
	}
	for _, tt := range tests {
		mark := ToMark(tt.percent)
		if mark.Letter != tt.wantLetter {
			t.Errorf("ToMark(%v) letter = %q, want %q", tt.percent.Float64, mark.Letter, tt.wantLetter)
		}
		assertPercent(t, mark.Points, tt.wantPoints)
	}
}

func TestScale_everyPercentMatchesOneRow(t *testing.T) {
	for p := 0.0; p <= 100; p += 0.5 {
		mark := ToMark(null.Float64From(p))
		var want Step
		for _, step := range DefaultScale {
			if step.Min <= p && step.Min >= want.Min {
				want = step
			}
		}
		assert.Equal(t, want.Letter, mark.Letter, "percent %v", p)
	}
}

func TestOverallGPA(t *testing.T) {
	tests := []struct {
		name      string
		courses   []Course
		items     []Item
		overrides map[string]float64
		want      *float64
	}{
		{name: "no courses", want: nil},
		{name: "course without grades", courses: []Course{{ID: "c1", Credits: 3}}, want: nil},
		{
			name:    "single course",
			courses: []Course{{ID: "c1", Credits: 4}},
			items:   []Item{item("c1", f(100), f(85))},
			want:    f(3.0),
		},
		{
			name:    "unweighted course",
			courses: []Course{{ID: "c1", Credits: 3}},
			items:   []Item{item("c1", nil, f(70)), item("c1", f(0), f(90))},
			want:    f(2.7),
		},
		{
			name:    "credit weighted",
			courses: []Course{{ID: "c1", Credits: 4}, {ID: "c2", Credits: 2}},
			items:   []Item{item("c1", nil, f(95)), item("c2", nil, f(78))},
			want:    f((4.0*4 + 2.3*2) / 6),
		},
		{
			name:    "zero credit course never counts",
			courses: []Course{{ID: "c1", Credits: 3}, {ID: "c2", Credits: 0}},
			items:   []Item{item("c1", nil, f(85)), item("c2", nil, f(10))},
			want:    f(3.0),
		},
		{
			name:    "all zero credits",
			courses: []Course{{ID: "c1", Credits: 0}},
			items:   []Item{item("c1", nil, f(85))},
			want:    nil,
		},
		{
			name:    "failing is 0.0 not absent",
			courses: []Course{{ID: "c1", Credits: 3}},
			items:   []Item{item("c1", nil, f(40))},
			want:    f(0.0),
		},
		{
			name:      "override on course without items",
			courses:   []Course{{ID: "c1", Credits: 3}},
			overrides: map[string]float64{"c1": 95},
			want:      f(4.0),
		},
		{
			name:      "NaN override drops the course",
			courses:   []Course{{ID: "c1", Credits: 3}},
			items:     []Item{item("c1", f(100), f(85))},
			overrides: map[string]float64{"c1": math.NaN()},
			want:      nil,
		},
		{
			name:      "NaN override leaves other courses",
			courses:   []Course{{ID: "c1", Credits: 3}, {ID: "c2", Credits: 3}},
			items:     []Item{item("c1", f(100), f(85)), item("c2", nil, f(95))},
			overrides: map[string]float64{"c1": math.NaN()},
			want:      f(4.0),
		},
		{
			name:      "override on unknown course ignored",
			courses:   []Course{{ID: "c1", Credits: 3}},
			items:     []Item{item("c1", nil, f(85))},
			overrides: map[string]float64{"nope": 20},
			want:      f(3.0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPercent(t, OverallGPA(tt.courses, tt.items, tt.overrides), tt.want)
		})
	}
}

func TestWhatIf(t *testing.T) {
	courses := []Course{{ID: "c1", Credits: 3}, {ID: "c2", Credits: 3}}
	items := []Item{item("c1", f(100), f(50)), item("c2", f(100), f(85))}

	// c1 is forced to an A, c2 keeps its B
	assertPercent(t, WhatIf(courses, items, "c1", 95), f(3.5))

	// the other course resolves exactly as without the override
	assertPercent(t, CoursePercent("c2", items, null.Float64{}), f(85))

	// stored data is untouched
	assertPercent(t, OverallGPA(courses, items, nil), f(1.5))
}

func TestNewReport(t *testing.T) {
	courses := []Course{{ID: "c1", Name: "Math", Credits: 4}, {ID: "c2", Name: "Art", Credits: 2}}
	items := []Item{item("c1", f(100), f(85))}

	rep := NewReport(courses, items, nil)
	assertPercent(t, rep.GPA, f(3.0))
	if assert.Len(t, rep.Courses, 2) {
		assert.Equal(t, "B", rep.Courses[0].Letter)
		assertPercent(t, rep.Courses[0].Percent, f(85))
		assert.Equal(t, NoLetter, rep.Courses[1].Letter)
		assert.False(t, rep.Courses[1].Points.Valid)
	}

	rep = NewReport(courses, items, map[string]float64{"c1": math.NaN()})
	assert.Equal(t, NoLetter, rep.Courses[0].Letter)
	assert.False(t, rep.Courses[0].Percent.Valid)
	assert.False(t, rep.GPA.Valid)

	rep = NewReport(courses, items, map[string]float64{"c2": 75})
	assert.Equal(t, "C", rep.Courses[1].Letter)
	assertPercent(t, rep.GPA, f((3.0*4+2.0*2)/6))

	proj := Project(courses, items, "c2", 95)
	assert.Equal(t, "A", proj.Letter)
	assertPercent(t, proj.GPA, f((3.0*4+4.0*2)/6))
}
