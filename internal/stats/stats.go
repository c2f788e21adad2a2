// Package stats reduces a user's task list into the dashboard view. Every
// function here is pure: the reference time is injected and identical
// input always produces identical output.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskboard-api/internal/task"
)

const (
	// HeatmapWindowDays is the trailing window rendered by the activity
	// heatmap, ending on the reference day.
	HeatmapWindowDays = 150

	// UpcomingWindowDays bounds the "upcoming" selection to the reference
	// day plus this many days, inclusive.
	UpcomingWindowDays = 7

	// UpcomingLimit caps the number of upcoming entries.
	UpcomingLimit = 5
)

// categoryPalette is cycled in first-seen category order. The assignment
// is part of the observable output and must stay deterministic.
var categoryPalette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899", "#6366f1",
}

// Dashboard is the full set of derived metrics for one task collection.
type Dashboard struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"inProgress"`
	Pending        int     `json:"pending"`
	HighPriority   int     `json:"highPriority"`
	Overdue        int     `json:"overdue"`
	Active         int     `json:"active"`
	CompletionRate float64 `json:"completionRate"`
	TasksThisMonth int     `json:"tasksThisMonth"`

	Priorities PriorityBreakdown `json:"priorities"`
	Categories []CategorySlice   `json:"categories"`
	Heatmap    Heatmap           `json:"heatmap"`
	Upcoming   []UpcomingTask    `json:"upcoming"`
}

// PriorityBreakdown tallies tasks per priority level.
type PriorityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// CategorySlice is one segment of the category breakdown. Start and End
// are cumulative percentages in [0, 100]; segment i starts exactly where
// segment i-1 ended, so the slices partition the circle with no gaps.
type CategorySlice struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Color   string  `json:"color"`
	Percent float64 `json:"percent"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Heatmap is a fixed-length daily completion histogram, grouped into
// Sunday-started weeks for grid rendering.
type Heatmap struct {
	Days  int            `json:"days"`
	Weeks [][]HeatmapDay `json:"weeks"`
}

// HeatmapDay is a single bucket. Level is 0 for no activity, otherwise
// 1-4 relative to the peak day inside the window.
type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// UpcomingTask is a due-soon entry for the dashboard list.
type UpcomingTask struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	DueDate  string    `json:"dueDate"`
	DaysLeft int       `json:"daysLeft"`
	DueLabel string    `json:"dueLabel"`
}

// Compute derives the dashboard from a task collection and a reference
// time. The input slice is not modified.
func Compute(tasks []task.Task, now time.Time) Dashboard {
	today := task.DateOf(now)

	d := Dashboard{
		Total:      len(tasks),
		Categories: []CategorySlice{},
		Upcoming:   []UpcomingTask{},
	}

	for _, t := range tasks {
		switch t.Status {
		case task.StatusCompleted:
			d.Completed++
		case task.StatusInProgress:
			d.InProgress++
		case task.StatusPending:
			d.Pending++
		}

		switch t.Priority {
		case task.PriorityHigh:
			d.Priorities.High++
		case task.PriorityMedium:
			d.Priorities.Medium++
		case task.PriorityLow:
			d.Priorities.Low++
		}

		if isOverdue(t, today) {
			d.Overdue++
		}

		created := task.DateOf(t.CreatedAt)
		if created.Year() == today.Year() && created.Month() == today.Month() {
			d.TasksThisMonth++
		}
	}

	d.HighPriority = d.Priorities.High
	d.Active = d.InProgress + d.Pending
	d.CompletionRate = completionRate(d.Completed, d.Total)
	d.Categories = categorySlices(tasks)
	d.Heatmap = heatmap(tasks, today)
	d.Upcoming = upcoming(tasks, today)

	return d
}

// completionRate is completed/total as a percentage rounded to one
// decimal place, and 0 for an empty collection.
func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(completed) / float64(total) * 100)
}

// isOverdue reports whether the task's due date has passed. Comparison is
// at day granularity: a task due today is not overdue, regardless of the
// time of day.
func isOverdue(t task.Task, today task.Date) bool {
	if t.DueDate == nil || t.Status == task.StatusCompleted {
		return false
	}
	return t.DueDate.Before(today)
}

// categorySlices groups tasks by category in first-seen order, cycling
// the palette by that order, and lays the segments end to end so they
// cover [0, 100] exactly.
func categorySlices(tasks []task.Task) []CategorySlice {
	counts := make(map[string]int)
	var order []string
	for _, t := range tasks {
		if t.Category == "" {
			continue
		}
		if _, seen := counts[t.Category]; !seen {
			order = append(order, t.Category)
		}
		counts[t.Category]++
	}

	total := 0
	for _, name := range order {
		total += counts[name]
	}

	slices := make([]CategorySlice, 0, len(order))
	cursor := 0.0
	for i, name := range order {
		share := float64(counts[name]) / float64(total) * 100
		end := cursor + share
		if i == len(order)-1 {
			// Pin the last segment so float error can never leave a gap.
			end = 100
		}
		slices = append(slices, CategorySlice{
			Name:    name,
			Count:   counts[name],
			Color:   categoryPalette[i%len(categoryPalette)],
			Percent: round1(share),
			Start:   cursor,
			End:     end,
		})
		cursor = end
	}

	return slices
}

// heatmap counts completed tasks per day over the trailing window and
// quantizes each bucket against the window's own peak.
func heatmap(tasks []task.Task, today task.Date) Heatmap {
	start := today.AddDays(-(HeatmapWindowDays - 1))

	counts := make(map[string]int)
	for _, t := range tasks {
		if t.Status != task.StatusCompleted {
			continue
		}
		counts[task.DateOf(t.UpdatedAt).String()]++
	}

	max := 0
	for i := 0; i < HeatmapWindowDays; i++ {
		if c := counts[start.AddDays(i).String()]; c > max {
			max = c
		}
	}
	if max == 0 {
		max = 1
	}

	var weeks [][]HeatmapDay
	var week []HeatmapDay
	for i := 0; i < HeatmapWindowDays; i++ {
		day := start.AddDays(i)
		if day.Weekday() == time.Sunday && len(week) > 0 {
			weeks = append(weeks, week)
			week = nil
		}
		count := counts[day.String()]
		week = append(week, HeatmapDay{
			Date:  day.String(),
			Count: count,
			Level: intensityLevel(count, max),
		})
	}
	if len(week) > 0 {
		weeks = append(weeks, week)
	}

	return Heatmap{Days: HeatmapWindowDays, Weeks: weeks}
}

// intensityLevel maps a bucket count to one of five levels relative to
// the window maximum, so the scale always reflects the user's own peak.
func intensityLevel(count, max int) int {
	if count == 0 {
		return 0
	}
	ratio := float64(count) / float64(max)
	switch {
	case ratio <= 0.25:
		return 1
	case ratio <= 0.50:
		return 2
	case ratio <= 0.75:
		return 3
	default:
		return 4
	}
}

// upcoming selects unfinished tasks due within the next week, soonest
// first. The sort is stable, so tasks sharing a due date keep their
// input order.
func upcoming(tasks []task.Task, today task.Date) []UpcomingTask {
	horizon := today.AddDays(UpcomingWindowDays)

	var due []task.Task
	for _, t := range tasks {
		if t.DueDate == nil || t.Status == task.StatusCompleted {
			continue
		}
		if t.DueDate.Before(today) || t.DueDate.After(horizon) {
			continue
		}
		due = append(due, t)
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueDate.Before(*due[j].DueDate)
	})

	if len(due) > UpcomingLimit {
		due = due[:UpcomingLimit]
	}

	result := make([]UpcomingTask, 0, len(due))
	for _, t := range due {
		daysLeft := today.DaysUntil(*t.DueDate)
		result = append(result, UpcomingTask{
			ID:       t.ID,
			Title:    t.Title,
			Category: t.Category,
			DueDate:  t.DueDate.String(),
			DaysLeft: daysLeft,
			DueLabel: dueLabel(daysLeft),
		})
	}
	return result
}

func dueLabel(daysLeft int) string {
	switch daysLeft {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("%d days", daysLeft)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
