package app

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
	"github.com/evanschultz/kanwow/internal/store"
)

type fakeStore struct {
	loaded   domain.Board
	saved    []domain.Board
	persists int
	handlers []func(domain.Board)
}

func newFakeStore(b domain.Board) *fakeStore {
	return &fakeStore{loaded: b}
}

func (f *fakeStore) Load(context.Context) domain.Board {
	return f.loaded.Clone()
}

func (f *fakeStore) Save(_ context.Context, b domain.Board) {
	f.saved = append(f.saved, b)
}

func (f *fakeStore) Persist(_ context.Context, _ domain.Board) bool {
	f.persists++
	return true
}

func (f *fakeStore) OnExternalUpdate(cb func(domain.Board)) func() {
	f.handlers = append(f.handlers, cb)
	return func() { f.handlers = nil }
}

func (f *fakeStore) emit(b domain.Board) {
	for _, h := range f.handlers {
		h(b)
	}
}

func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	st := newFakeStore(DefaultBoard(DefaultColumnTemplates(), 200))
	svc := NewService(st, sequentialIDs("t"), fixedClock, ServiceConfig{UndoDepth: 1, MinColumnWidth: 200})
	svc.Load(context.Background())
	return svc, st
}

func mustCreate(t *testing.T, svc *Service, columnID, title string) domain.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), CreateTaskInput{ColumnID: columnID, Title: title})
	if err != nil {
		t.Fatalf("CreateTask(%q) error = %v", title, err)
	}
	return task
}

func order(t *testing.T, svc *Service, columnID string) []string {
	t.Helper()
	c, ok := svc.Board().Column(columnID)
	if !ok {
		t.Fatalf("column %q missing", columnID)
	}
	return c.TaskIDs
}

func TestDefaultBoard(t *testing.T) {
	b := DefaultBoard(DefaultColumnTemplates(), 200)
	if len(b.Columns) != 3 || len(b.Tasks) != 0 {
		t.Fatalf("unexpected default board %#v", b)
	}
	want := []string{"Backlog", "In Progress", "Done"}
	for i, c := range b.Columns {
		if c.Title != want[i] || c.Width != 280 || c.ID != "col-"+strconv.Itoa(i+1) {
			t.Fatalf("unexpected column %d %#v", i, c)
		}
	}
	custom := DefaultBoard([]ColumnTemplate{{Title: "To Review", Width: 50}, {Title: "to review"}, {Title: " "}}, 200)
	if len(custom.Columns) != 1 || custom.Columns[0].ID != "to-review" || custom.Columns[0].Width != 200 {
		t.Fatalf("unexpected sanitized columns %#v", custom.Columns)
	}
}

func TestMoveTaskRecordsAndUndoRestores(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	a := mustCreate(t, svc, "col-1", "a")
	b := mustCreate(t, svc, "col-1", "b")
	c := mustCreate(t, svc, "col-1", "c")
	saves := len(st.saved)

	rec, ok := svc.MoveTask(ctx, MoveTaskInput{TaskID: b.ID, FromColumnID: "col-1", ToColumnID: "col-2", TargetIndex: 0})
	if !ok {
		t.Fatal("expected move to apply")
	}
	if rec.OriginalIndex != 1 {
		t.Fatalf("expected original index 1, got %d", rec.OriginalIndex)
	}
	if len(st.saved) != saves+1 {
		t.Fatal("expected move to save")
	}
	if !svc.CanUndo() {
		t.Fatal("expected undo available")
	}
	if _, ok := svc.UndoLast(ctx); !ok {
		t.Fatal("expected undo to apply")
	}
	if got := order(t, svc, "col-1"); !slices.Equal(got, []string{a.ID, b.ID, c.ID}) {
		t.Fatalf("expected origin order restored, got %v", got)
	}
	if svc.CanUndo() {
		t.Fatal("expected undo not to be redoable")
	}
	if _, ok := svc.UndoLast(ctx); ok {
		t.Fatal("expected empty undo to be a no-op")
	}
}

func TestMoveTaskUnknownColumnIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	a := mustCreate(t, svc, "col-1", "a")
	saves := len(st.saved)
	if _, ok := svc.MoveTask(ctx, MoveTaskInput{TaskID: a.ID, FromColumnID: "col-1", ToColumnID: "nope"}); ok {
		t.Fatal("expected unknown destination to be a no-op")
	}
	if _, ok := svc.MoveTask(ctx, MoveTaskInput{TaskID: a.ID, FromColumnID: "col-2", ToColumnID: "col-3"}); ok {
		t.Fatal("expected task missing from source to be a no-op")
	}
	if len(st.saved) != saves || svc.CanUndo() {
		t.Fatal("expected no save and no undo record")
	}
}

func TestMoveTaskSameSlotDropKeepsUndo(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	a := mustCreate(t, svc, "col-1", "a")
	b := mustCreate(t, svc, "col-1", "b")
	if _, ok := svc.MoveTask(ctx, MoveTaskInput{TaskID: a.ID, FromColumnID: "col-1", ToColumnID: "col-2", TargetIndex: 0}); !ok {
		t.Fatal("expected first move to apply")
	}
	saves := len(st.saved)

	tests := []struct {
		name  string
		index int
	}{
		{name: "own index", index: 0},
		{name: "append when already last", index: domain.AppendIndex},
		{name: "past end when already last", index: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := svc.MoveTask(ctx, MoveTaskInput{TaskID: b.ID, FromColumnID: "col-1", ToColumnID: "col-1", TargetIndex: tt.index}); ok {
				t.Fatal("expected same-slot drop to be a no-op")
			}
		})
	}
	if len(st.saved) != saves {
		t.Fatal("expected same-slot drops not to save")
	}
	if _, ok := svc.UndoLast(ctx); !ok {
		t.Fatal("expected undo of the first move to survive")
	}
	if got := order(t, svc, "col-1"); !slices.Equal(got, []string{a.ID, b.ID}) {
		t.Fatalf("expected first move undone, got %v", got)
	}
}

func TestUndoDiscardsStaleRecord(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	a := mustCreate(t, svc, "col-1", "a")
	svc.MoveTask(ctx, MoveTaskInput{TaskID: a.ID, FromColumnID: "col-1", ToColumnID: "col-2", TargetIndex: domain.AppendIndex})

	// Another instance moves the task on before the undo lands.
	external := svc.Board()
	external.MoveTask(a.ID, "col-2", "col-3", 0)
	st.emit(external)
	select {
	case <-svc.ExternalUpdates():
	default:
		t.Fatal("expected external update signal")
	}

	if _, ok := svc.UndoLast(ctx); ok {
		t.Fatal("expected stale undo to be discarded")
	}
	if got := order(t, svc, "col-3"); !slices.Equal(got, []string{a.ID}) {
		t.Fatalf("expected externally moved task to stay put, got %v", got)
	}
	if svc.CanUndo() {
		t.Fatal("expected stale record consumed")
	}
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "  Draft  ", Labels: []string{"UI"}})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if got := order(t, svc, "col-1"); !slices.Equal(got, []string{task.ID}) {
		t.Fatalf("expected task in first column, got %v", got)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{ColumnID: "missing", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: " "}); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}

	due := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateTask(ctx, UpdateTaskInput{TaskID: task.ID, Title: "Final", Description: "desc", Labels: []string{"b", "a"}, DueDate: &due})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Title != "Final" || !slices.Equal(updated.Labels, []string{"a", "b"}) || updated.DueDate.Hour() != 0 {
		t.Fatalf("unexpected updated task %#v", updated)
	}

	toggled, err := svc.ToggleDone(ctx, task.ID)
	if err != nil || !toggled.Done {
		t.Fatalf("ToggleDone() = %#v, %v", toggled, err)
	}

	comment, err := svc.AddComment(ctx, task.ID, "nice")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.Author != domain.DefaultCommentAuthor {
		t.Fatalf("unexpected comment author %q", comment.Author)
	}
	if got, _ := svc.Board().Task(task.ID); len(got.Comments) != 1 {
		t.Fatalf("expected one comment, got %#v", got.Comments)
	}

	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, ok := svc.Board().Task(task.ID); ok {
		t.Fatal("expected task deleted")
	}
	if err := svc.DeleteTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaskForgetsUndo(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a := mustCreate(t, svc, "col-1", "a")
	svc.MoveTask(ctx, MoveTaskInput{TaskID: a.ID, FromColumnID: "col-1", ToColumnID: "col-2", TargetIndex: 0})
	if err := svc.DeleteTask(ctx, a.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if svc.CanUndo() {
		t.Fatal("expected undo record for deleted task dropped")
	}
}

func TestColumnLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	col, err := svc.CreateColumn(ctx, "Review", "🔍")
	if err != nil {
		t.Fatalf("CreateColumn() error = %v", err)
	}
	if col.ID != "review" || col.Width != 280 {
		t.Fatalf("unexpected column %#v", col)
	}
	again, err := svc.CreateColumn(ctx, "review", "")
	if err != nil || again.ID != "review-2" {
		t.Fatalf("expected unique id, got %#v %v", again, err)
	}
	renamed, err := svc.RenameColumn(ctx, col.ID, "QA")
	if err != nil || renamed.Title != "QA" {
		t.Fatalf("RenameColumn() = %#v %v", renamed, err)
	}
	resized, err := svc.ResizeColumn(ctx, col.ID, 120)
	if err != nil || resized.Width != 200 {
		t.Fatalf("expected width clamped to 200, got %#v %v", resized, err)
	}
	if !svc.MoveColumn(ctx, col.ID, 0) || svc.Board().Columns[0].ID != col.ID {
		t.Fatal("expected column moved to front")
	}
	task := mustCreate(t, svc, col.ID, "in review")
	if err := svc.DeleteColumn(ctx, col.ID); err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	if _, ok := svc.Board().Task(task.ID); ok {
		t.Fatal("expected column tasks deleted")
	}
	if _, err := svc.RenameColumn(ctx, col.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	mustCreate(t, svc, "col-2", "carry over")
	data, err := svc.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	before := svc.Board()

	if _, err := svc.Import(ctx, []byte(`{"columns": []}`)); !errors.Is(err, ErrInvalidImport) || !errors.Is(err, store.ErrInvalidDocument) {
		t.Fatalf("expected invalid import error, got %v", err)
	}
	if got := svc.Board(); len(got.Tasks) != 1 {
		t.Fatal("expected board untouched after rejected import")
	}

	_ = svc.DeleteTask(ctx, order(t, svc, "col-2")[0])
	saves := len(st.saved)
	imported, err := svc.Import(ctx, data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(imported.Tasks) != 1 || len(st.saved) != saves+1 {
		t.Fatalf("unexpected import result %#v", imported)
	}
	if !slices.Equal(order(t, svc, "col-2"), before.Columns[1].TaskIDs) {
		t.Fatal("expected imported order to match export")
	}
}

func TestColumnWidthFloorAppliesToIncomingBoards(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	narrow := []byte(`{"columns": [{"id": "col-1", "title": "To Do", "width": 0, "taskIds": []}], "tasks": {}}`)
	imported, err := svc.Import(ctx, narrow)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if imported.Columns[0].Width != 200 {
		t.Fatalf("expected imported width raised to 200, got %d", imported.Columns[0].Width)
	}

	external := svc.Board()
	external.Columns[0].Width = 50
	st.emit(external)
	<-svc.ExternalUpdates()
	if got := svc.Board().Columns[0].Width; got != 200 {
		t.Fatalf("expected broadcast width raised to 200, got %d", got)
	}

	stored := DefaultBoard(DefaultColumnTemplates(), 200)
	stored.Columns[1].Width = 120
	loaded := NewService(newFakeStore(stored), sequentialIDs("t"), fixedClock, ServiceConfig{UndoDepth: 1, MinColumnWidth: 200}).Load(ctx)
	if loaded.Columns[1].Width != 200 {
		t.Fatalf("expected stored width raised to 200, got %d", loaded.Columns[1].Width)
	}
}

func TestPersistDelegatesToStore(t *testing.T) {
	svc, st := newTestService(t)
	if !svc.Persist(context.Background()) || st.persists != 1 {
		t.Fatal("expected persist to reach the store")
	}
	svc.Close()
	if st.handlers != nil {
		t.Fatal("expected external subscription removed")
	}
}
