package app

import (
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
)

// SortKey selects the card order within a column.
type SortKey string

// SortManual and related constants define the supported orderings.
const (
	SortManual  SortKey = "manual"
	SortTitle   SortKey = "title"
	SortDue     SortKey = "due"
	SortCreated SortKey = "created"
)

// SortKeys lists the orderings in cycle order.
var SortKeys = []SortKey{SortManual, SortTitle, SortDue, SortCreated}

// NextSortKey returns the ordering after k, wrapping around.
func NextSortKey(k SortKey) SortKey {
	idx := slices.Index(SortKeys, k)
	return SortKeys[(idx+1)%len(SortKeys)]
}

// ViewOptions defines which cards are visible and in what order.
type ViewOptions struct {
	Labels []string // any-of; empty means no label filter
	Search string   // case-insensitive substring across title, description, and labels
	Sort   SortKey
}

// Active reports whether any filter narrows the visible cards.
func (o ViewOptions) Active() bool {
	return len(o.Labels) > 0 || strings.TrimSpace(o.Search) != ""
}

// VisibleTasks returns the cards of a column after filtering and sorting. Dangling ids are
// skipped.
func VisibleTasks(b domain.Board, columnID string, opts ViewOptions) []domain.Task {
	tasks := b.ColumnTasks(columnID)
	query := strings.ToLower(strings.TrimSpace(opts.Search))
	labels := domain.NormalizeLabels(opts.Labels)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if len(labels) > 0 && !matchesAnyLabel(t, labels) {
			continue
		}
		if query != "" && !matchesSearch(t, query) {
			continue
		}
		out = append(out, t)
	}
	sortTasks(out, opts.Sort)
	return out
}

// Labels returns every label used on the board, sorted.
func Labels(b domain.Board) []string {
	var all []string
	for _, t := range b.Tasks {
		all = append(all, t.Labels...)
	}
	return domain.NormalizeLabels(all)
}

// DueSummary counts open tasks by due-date urgency.
type DueSummary struct {
	Overdue  int
	DueToday int
	DueSoon  int
}

// SummarizeDue counts overdue tasks, tasks due today, and tasks due within window after today.
func SummarizeDue(b domain.Board, now time.Time, window time.Duration) DueSummary {
	var out DueSummary
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	horizon := today.Add(window)
	for _, t := range b.Tasks {
		if t.Done || t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		switch {
		case due.Before(today):
			out.Overdue++
		case due.Equal(today):
			out.DueToday++
		case !due.After(horizon):
			out.DueSoon++
		}
	}
	return out
}

func matchesAnyLabel(t domain.Task, labels []string) bool {
	for _, label := range labels {
		if t.HasLabel(label) {
			return true
		}
	}
	return false
}

// matchesSearch performs case-insensitive substring matching across title, description, and labels.
func matchesSearch(t domain.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), query) {
		return true
	}
	return labelsContainQuery(t.Labels, query)
}

// labelsContainQuery handles labels contain query.
func labelsContainQuery(labels []string, query string) bool {
	for _, label := range labels {
		if strings.Contains(strings.ToLower(label), query) {
			return true
		}
	}
	return false
}

func sortTasks(tasks []domain.Task, key SortKey) {
	switch key {
	case SortTitle:
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	case SortDue:
		// Tasks without a due date sink to the bottom.
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			default:
				return a.DueDate.Compare(*b.DueDate)
			}
		})
	case SortCreated:
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	}
}
