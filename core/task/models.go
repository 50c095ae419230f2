package task

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core"
)

// Type classifies a task.
type Type string

const (
	Homework Type = "homework"
	Project  Type = "project"
	Exam     Type = "exam"
)

// minAutoStepHours is the smallest estimate that gets generated steps.
const minAutoStepHours = 2

type (
	Step struct {
		ID     string    `json:"id"`
		Title  string    `json:"title"`
		Done   bool      `json:"done"`
		SubDue null.Time `json:"sub_due"`
	}

	// Steps is stored as a single JSON document.
	Steps []Step

	Task struct {
		ID            string       `json:"id"`
		Title         string       `json:"title"`
		CourseID      null.String  `json:"course_id"`
		Type          Type         `json:"type"`
		Due           time.Time    `json:"due"`
		EstimateHours null.Float64 `json:"estimate_hours"`
		Completed     bool         `json:"completed"`
		Steps         Steps        `json:"steps"`
	}
)

// PendingSteps returns the titles of the steps not done yet.
func (t Task) PendingSteps() []string {
	var titles []string
	for _, s := range t.Steps {
		if !s.Done {
			titles = append(titles, s.Title)
		}
	}
	return titles
}

func (t Task) step(id string) int {
	for i, s := range t.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (s Steps) Value() (driver.Value, error) {
	if s == nil {
		s = Steps{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Steps) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = Steps{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("task: cannot scan %T into Steps", src)
	}
	return json.Unmarshal(data, s)
}

// Input contains the information needed to create or edit a Task.
type Input struct {
	Title         string       `json:"title" validate:"required,notblank"`
	CourseID      null.String  `json:"course_id"`
	Type          Type         `json:"type" validate:"omitempty,oneof=homework project exam"`
	Due           time.Time    `json:"due"`
	EstimateHours null.Float64 `json:"estimate_hours" validate:"omitempty,finite,min=0"`
	AutoSteps     bool         `json:"auto_steps"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Type = Type(core.CleanString(string(in.Type), true))
	if in.Type == "" {
		in.Type = Homework
	}
	if in.CourseID.Valid {
		in.CourseID.String = core.CleanString(in.CourseID.String)
		in.CourseID.Valid = in.CourseID.String != ""
	}
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Due.IsZero() {
		return core.NewFieldError("due", "this field is required")
	}
	return nil
}

// wantsSteps reports whether steps should be generated for t.
func (in Input) wantsSteps(t Task) bool {
	return in.AutoSteps && len(t.Steps) == 0 &&
		in.EstimateHours.Valid && in.EstimateHours.Float64 >= minAutoStepHours
}

func (in Input) apply(t *Task) {
	t.Title = in.Title
	t.CourseID = in.CourseID
	t.Type = in.Type
	t.Due = in.Due
	t.EstimateHours = in.EstimateHours
}

type StepInput struct {
	Title  string    `json:"title" validate:"required,notblank"`
	Done   bool      `json:"done"`
	SubDue null.Time `json:"sub_due"`
}

func (in *StepInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	return validate.Struct(in)
}

// Filter narrows Query; zero values match everything.
type Filter struct {
	CourseID string
	Type     Type
	Ordering []core.Ordering
}

func (f Filter) Match(t Task) bool {
	if f.CourseID != "" && !(t.CourseID.Valid && t.CourseID.String == f.CourseID) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// OrderingFields are the fields tasks may be ordered by.
var OrderingFields = []string{"due", "title", "type"}
