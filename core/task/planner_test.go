package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/task"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateSteps(t *testing.T) {
	due := now.Add(8 * time.Hour)
	steps := task.GenerateSteps(now, due)
	require.Len(t, steps, 4)

	titles := []string{"Research / Read instructions", "Outline or plan", "Draft / first attempt", "Edit / finalize & submit"}
	for i, s := range steps {
		assert.Equal(t, titles[i], s.Title)
		assert.False(t, s.Done)
		assert.NotEmpty(t, s.ID)
		if assert.True(t, s.SubDue.Valid) {
			assert.Equal(t, now.Add(time.Duration(i+1)*2*time.Hour), s.SubDue.Time)
		}
	}
	assert.Equal(t, due, steps[3].SubDue.Time)

	for _, s := range task.GenerateSteps(now, now.Add(-time.Hour)) {
		assert.False(t, s.SubDue.Valid, "past due has no sub-due dates")
	}
}

func TestUpcoming(t *testing.T) {
	tasks := []task.Task{
		{ID: "late", Due: now.Add(-time.Minute)},
		{ID: "day2", Due: now.Add(48 * time.Hour)},
		{ID: "day1", Due: now.Add(24 * time.Hour)},
		{ID: "done", Due: now.Add(time.Hour), Completed: true},
		{ID: "edge", Due: now.Add(72 * time.Hour)},
		{ID: "far", Due: now.Add(73 * time.Hour)},
		{ID: "now", Due: now},
	}

	tests := []struct {
		days int
		want []string
	}{
		{days: 0, want: []string{"now", "day1", "day2", "edge"}},
		{days: -2, want: []string{"now", "day1", "day2", "edge"}},
		{days: 1, want: []string{"now", "day1"}},
		{days: 7, want: []string{"now", "day1", "day2", "edge", "far"}},
	}
	for _, tt := range tests {
		var got []string
		for _, u := range task.Upcoming(tasks, now, tt.days) {
			got = append(got, u.ID)
		}
		assert.Equal(t, tt.want, got, "days=%d", tt.days)
	}
}

func TestReminderAt(t *testing.T) {
	at, ok := task.ReminderAt(task.Task{Due: now.Add(3 * time.Hour)}, now, time.Hour)
	assert.True(t, ok)
	assert.Equal(t, now.Add(2*time.Hour), at)

	_, ok = task.ReminderAt(task.Task{Due: now.Add(30 * time.Minute)}, now, time.Hour)
	assert.False(t, ok)
}

func TestSort(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "b", Type: task.Exam, Due: now.Add(2 * time.Hour)},
		{ID: "2", Title: "a", Type: task.Homework, Due: now.Add(3 * time.Hour)},
		{ID: "3", Title: "c", Type: task.Exam, Due: now.Add(time.Hour)},
	}
	ids := func() (s []string) {
		for _, t := range tasks {
			s = append(s, t.ID)
		}
		return s
	}

	tests := []struct {
		ordering string
		want     []string
	}{
		{ordering: "", want: []string{"3", "1", "2"}},
		{ordering: "-due", want: []string{"2", "1", "3"}},
		{ordering: "title", want: []string{"2", "1", "3"}},
		{ordering: "type,-title", want: []string{"3", "1", "2"}},
		{ordering: "type", want: []string{"3", "1", "2"}},
		{ordering: "bogus", want: []string{"3", "1", "2"}},
	}
	for _, tt := range tests {
		task.Sort(tasks, core.ParseOrdering(tt.ordering, task.OrderingFields...))
		assert.Equal(t, tt.want, ids(), "ordering=%q", tt.ordering)
	}
}

func TestSteps_ValueScan(t *testing.T) {
	steps := task.Steps{{ID: "s1", Title: "Outline", Done: true}}
	v, err := steps.Value()
	require.NoError(t, err)

	var got task.Steps
	require.NoError(t, got.Scan([]byte(v.(string))))
	assert.Equal(t, steps, got)

	require.NoError(t, got.Scan(nil))
	assert.Equal(t, task.Steps{}, got)

	v, err = task.Steps(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	assert.Error(t, got.Scan(42))
}
