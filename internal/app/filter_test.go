package app

import (
	"slices"
	"testing"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
	"github.com/evanschultz/kanwow/internal/store"
)

func filterBoard(t *testing.T) domain.Board {
	t.Helper()
	b := DefaultBoard(DefaultColumnTemplates(), 200)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day := func(n int) *time.Time {
		d := base.AddDate(0, 0, n)
		return &d
	}
	inputs := []struct {
		in      domain.TaskInput
		created time.Time
	}{
		{in: domain.TaskInput{ID: "t1", Title: "zeta", Labels: []string{"ui"}, DueDate: day(3)}, created: base.Add(3 * time.Hour)},
		{in: domain.TaskInput{ID: "t2", Title: "Alpha", Description: "Fix Login", Labels: []string{"bug"}}, created: base.Add(1 * time.Hour)},
		{in: domain.TaskInput{ID: "t3", Title: "mid", Labels: []string{"ui", "bug"}, DueDate: day(-1)}, created: base.Add(2 * time.Hour)},
	}
	for _, item := range inputs {
		task, err := domain.NewTask(item.in, item.created)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if err := b.AddTask(task, "col-1"); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	b.Columns[0].TaskIDs = append(b.Columns[0].TaskIDs, "dangling")
	return b
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestVisibleTasks(t *testing.T) {
	b := filterBoard(t)
	tests := []struct {
		name string
		opts ViewOptions
		want []string
	}{
		{name: "manual keeps column order", opts: ViewOptions{}, want: []string{"t1", "t2", "t3"}},
		{name: "label any-of", opts: ViewOptions{Labels: []string{"BUG"}}, want: []string{"t2", "t3"}},
		{name: "search description", opts: ViewOptions{Search: "login"}, want: []string{"t2"}},
		{name: "search labels", opts: ViewOptions{Search: "ui"}, want: []string{"t1", "t3"}},
		{name: "sort title", opts: ViewOptions{Sort: SortTitle}, want: []string{"t2", "t3", "t1"}},
		{name: "sort due", opts: ViewOptions{Sort: SortDue}, want: []string{"t3", "t1", "t2"}},
		{name: "sort created", opts: ViewOptions{Sort: SortCreated}, want: []string{"t2", "t3", "t1"}},
		{name: "filters combine", opts: ViewOptions{Labels: []string{"ui"}, Search: "mid"}, want: []string{"t3"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(VisibleTasks(b, "col-1", tc.opts)); !slices.Equal(got, tc.want) {
				t.Fatalf("VisibleTasks() = %v, want %v", got, tc.want)
			}
		})
	}
	if got := VisibleTasks(b, "missing", ViewOptions{}); len(got) != 0 {
		t.Fatalf("expected no tasks for unknown column, got %v", ids(got))
	}
}

func TestLabelsAndSortCycle(t *testing.T) {
	if got := Labels(filterBoard(t)); !slices.Equal(got, []string{"bug", "ui"}) {
		t.Fatalf("unexpected labels %v", got)
	}
	k := SortManual
	var seen []SortKey
	for range SortKeys {
		k = NextSortKey(k)
		seen = append(seen, k)
	}
	if !slices.Equal(seen, []SortKey{SortTitle, SortDue, SortCreated, SortManual}) {
		t.Fatalf("unexpected sort cycle %v", seen)
	}
	if (ViewOptions{Sort: SortDue}).Active() {
		t.Fatal("expected sort alone not to count as a filter")
	}
}

func TestSummarizeDue(t *testing.T) {
	b := filterBoard(t)
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	got := SummarizeDue(b, now, 72*time.Hour)
	if got != (DueSummary{Overdue: 1, DueSoon: 1}) {
		t.Fatalf("unexpected summary %#v", got)
	}
	if got := SummarizeDue(b, now.AddDate(0, 0, 3), 0); got != (DueSummary{Overdue: 1, DueToday: 1}) {
		t.Fatalf("unexpected summary on due day %#v", got)
	}
}

func TestVisibleTasksMatchesMixedCaseImportedLabels(t *testing.T) {
	doc := []byte(`{
		"columns": [{"id": "col-1", "title": "To Do", "width": 200, "taskIds": ["t1", "t2"]}],
		"tasks": {
			"t1": {"id": "t1", "title": "ship", "labels": ["Urgent", " Backend "], "createdAt": "2026-03-01T09:00:00Z"},
			"t2": {"id": "t2", "title": "idle", "labels": ["later"], "createdAt": "2026-03-01T09:00:00Z"}
		}
	}`)
	b, err := store.Decode(doc)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	labels := Labels(b)
	if !slices.Contains(labels, "urgent") {
		t.Fatalf("expected lowercased label in chip set, got %v", labels)
	}
	got := VisibleTasks(b, "col-1", ViewOptions{Labels: []string{"urgent"}})
	if !slices.Equal(ids(got), []string{"t1"}) {
		t.Fatalf("expected imported task to match lowercased chip, got %v", ids(got))
	}

	// Snapshots that skip decoding keep their original casing.
	raw := domain.Task{ID: "t9", Labels: []string{"Urgent"}}
	if !raw.HasLabel("urgent") || !raw.HasLabel(" URGENT ") {
		t.Fatal("expected label match to ignore case and padding")
	}
}
