package task

import (
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core"
)

// DefaultUpcomingDays is the dashboard horizon.
const DefaultUpcomingDays = 3

var stepTitles = [...]string{
	"Research / Read instructions",
	"Outline or plan",
	"Draft / first attempt",
	"Edit / finalize & submit",
}

// GenerateSteps breaks a task due at due into four steps.
// When due is in the future, step i is due at now + (due-now)*(i+1)/4;
// otherwise steps get no sub-due date.
func GenerateSteps(now, due time.Time) Steps {
	total := due.Sub(now)
	steps := make(Steps, len(stepTitles))
	for i, title := range stepTitles {
		steps[i] = Step{ID: core.NewID("step"), Title: title}
		if total > 0 {
			offset := total * time.Duration(i+1) / time.Duration(len(stepTitles))
			steps[i].SubDue = null.TimeFrom(now.Add(offset))
		}
	}
	return steps
}

// Upcoming returns the unfinished tasks due within days from now, soonest first.
func Upcoming(tasks []Task, now time.Time, days int) []Task {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	max := now.Add(time.Duration(days) * 24 * time.Hour)

	var upcoming []Task
	for _, t := range tasks {
		if t.Completed || t.Due.Before(now) || t.Due.After(max) {
			continue
		}
		upcoming = append(upcoming, t)
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Due.Before(upcoming[j].Due) })
	return upcoming
}

// ReminderAt returns when a reminder for t is due, lead before its deadline.
// ok is false once that moment has passed.
func ReminderAt(t Task, now time.Time, lead time.Duration) (at time.Time, ok bool) {
	at = t.Due.Add(-lead)
	if !at.After(now) {
		return time.Time{}, false
	}
	return at, true
}

// Sort orders tasks in place by ords, falling back to due date.
func Sort(tasks []Task, ords []core.Ordering) {
	ords = append(ords, core.Ordering{Field: "due", Ascending: true})
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		for _, ord := range ords {
			var cmp int
			switch ord.Field {
			case "due":
				cmp = compareTime(a.Due, b.Due)
			case "title":
				cmp = compareString(a.Title, b.Title)
			case "type":
				cmp = compareString(string(a.Type), string(b.Type))
			}
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
