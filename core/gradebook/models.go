package gradebook

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/grade"
)

// DefaultCredits is used when a course is created without credits.
const DefaultCredits = 3

// CourseInput contains the information needed to create or replace a Course.
type CourseInput struct {
	Name       string       `json:"name" validate:"required,notblank"`
	Credits    null.Float64 `json:"credits" validate:"omitempty,finite,min=0"`
	Term       null.String  `json:"term"`
	ExternalID null.String  `json:"external_id"`
}

func (in *CourseInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	if in.Term.Valid {
		in.Term.String = core.CleanString(in.Term.String)
	}
	return validate.Struct(in)
}

func (in CourseInput) apply(c *grade.Course) {
	c.Name = in.Name
	c.Credits = DefaultCredits
	if in.Credits.Valid {
		c.Credits = in.Credits.Float64
	}
	c.Term = in.Term
	c.ExternalID = in.ExternalID
}

// ItemInput contains the information needed to create or replace a grade Item.
// Weight and Percent are optional; absent values are kept absent.
type ItemInput struct {
	CourseID null.String  `json:"course_id"`
	Name     string       `json:"name" validate:"required,notblank"`
	Category string       `json:"category"`
	Weight   null.Float64 `json:"weight" validate:"omitempty,finite"`
	Percent  null.Float64 `json:"percent" validate:"omitempty,finite,min=0"`
}

func (in *ItemInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Category = core.CleanString(in.Category)
	if in.CourseID.Valid {
		in.CourseID.String = core.CleanString(in.CourseID.String)
		in.CourseID.Valid = in.CourseID.String != ""
	}
	return validate.Struct(in)
}

func (in ItemInput) apply(it *grade.Item) {
	it.CourseID = in.CourseID
	it.Name = in.Name
	it.Category = in.Category
	it.Weight = in.Weight
	it.Percent = in.Percent
}

// ItemFilter narrows QueryItems. Zero value matches every item.
type ItemFilter struct {
	CourseID string
	Orphaned bool // only items without a course
}

func (f ItemFilter) Match(it grade.Item) bool {
	if f.Orphaned && it.CourseID.Valid {
		return false
	}
	if f.CourseID != "" && !it.BelongsTo(f.CourseID) {
		return false
	}
	return true
}

// Snapshot is the read-only dataset handed to the grade engine.
type Snapshot struct {
	Courses []grade.Course `json:"courses"`
	Items   []grade.Item   `json:"grade_items"`
}
