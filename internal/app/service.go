package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
	"github.com/evanschultz/kanwow/internal/store"
	"github.com/evanschultz/kanwow/internal/undo"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	UndoDepth          int
	MinColumnWidth     int
	DefaultColumnWidth int
	CommentAuthor      string
}

// ColumnTemplate describes one column of the default board.
type ColumnTemplate struct {
	ID    string
	Title string
	Icon  string
	Width int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service owns the current board handle. Every operation re-reads the live board under the
// service lock, so a snapshot adopted from another instance is never overwritten by a stale copy.
type Service struct {
	store          BoardStore
	undo           *undo.Stack
	idGen          IDGenerator
	clock          Clock
	minColumnWidth int
	columnWidth    int
	author         string

	mu             sync.Mutex
	board          domain.Board
	updates        chan struct{}
	cancelExternal func()
}

// NewService constructs a new value for this package.
func NewService(st BoardStore, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.MinColumnWidth <= 0 {
		cfg.MinColumnWidth = domain.DefaultMinColumnWidth
	}
	if cfg.DefaultColumnWidth <= 0 {
		cfg.DefaultColumnWidth = 280
	}
	s := &Service{
		store:          st,
		undo:           undo.New(cfg.UndoDepth),
		idGen:          idGen,
		clock:          clock,
		minColumnWidth: cfg.MinColumnWidth,
		columnWidth:    domain.ClampWidth(cfg.DefaultColumnWidth, cfg.MinColumnWidth),
		author:         strings.TrimSpace(cfg.CommentAuthor),
		board:          domain.Board{Columns: []domain.Column{}, Tasks: map[string]domain.Task{}},
		updates:        make(chan struct{}, 1),
	}
	if st != nil {
		s.cancelExternal = st.OnExternalUpdate(s.adoptExternal)
	}
	return s
}

// DefaultBoard builds a board from column templates. Invalid or duplicate templates are skipped.
func DefaultBoard(templates []ColumnTemplate, minWidth int) domain.Board {
	b := domain.Board{Columns: []domain.Column{}, Tasks: map[string]domain.Task{}}
	for idx, tpl := range sanitizeColumnTemplates(templates) {
		id := tpl.ID
		if id == "" {
			id = "col-" + strconv.Itoa(idx+1)
		}
		col, err := domain.NewColumn(id, tpl.Title, tpl.Icon, tpl.Width, minWidth)
		if err != nil {
			continue
		}
		_ = b.AddColumn(col)
	}
	return b
}

// DefaultColumnTemplates returns the stock Backlog, In Progress, Done columns.
func DefaultColumnTemplates() []ColumnTemplate {
	return []ColumnTemplate{
		{ID: "col-1", Title: "Backlog", Icon: "📋", Width: 280},
		{ID: "col-2", Title: "In Progress", Icon: "🚧", Width: 280},
		{ID: "col-3", Title: "Done", Icon: "✅", Width: 280},
	}
}

// Load replaces the in-memory board with the persisted one.
func (s *Service) Load(ctx context.Context) domain.Board {
	var b domain.Board
	if s.store != nil {
		b = s.store.Load(ctx)
	}
	b.Normalize()
	b.ClampColumnWidths(s.minColumnWidth)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = b
	s.undo.Clear()
	return s.board.Clone()
}

// Board returns a copy of the current board.
func (s *Service) Board() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// ExternalUpdates signals when a snapshot from another instance replaced the board.
func (s *Service) ExternalUpdates() <-chan struct{} {
	return s.updates
}

// Close stops listening for external updates.
func (s *Service) Close() {
	s.mu.Lock()
	cancel := s.cancelExternal
	s.cancelExternal = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// MoveTaskInput holds input values for move task operations.
type MoveTaskInput struct {
	TaskID       string
	FromColumnID string
	ToColumnID   string
	TargetIndex  int
}

// MoveTask applies one completed drop, records it for undo, and saves. Unknown columns, a task
// missing from the source column, or a drop back onto the task's own slot make it a no-op that
// reports false and leaves the undo stack alone.
func (s *Service) MoveTask(ctx context.Context, in MoveTaskInput) (domain.MoveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.board.Column(in.FromColumnID)
	if !ok {
		return domain.MoveRecord{}, false
	}
	origin := from.IndexOf(in.TaskID)
	if origin < 0 {
		return domain.MoveRecord{}, false
	}
	if in.FromColumnID == in.ToColumnID && landingIndex(in.TargetIndex, len(from.TaskIDs)-1) == origin {
		return domain.MoveRecord{}, false
	}
	if !s.board.MoveTask(in.TaskID, in.FromColumnID, in.ToColumnID, in.TargetIndex) {
		return domain.MoveRecord{}, false
	}
	rec := domain.MoveRecord{
		TaskID:        in.TaskID,
		FromColumnID:  in.FromColumnID,
		ToColumnID:    in.ToColumnID,
		OriginalIndex: origin,
	}
	s.undo.Record(rec)
	s.saveLocked(ctx)
	return rec, true
}

// landingIndex is where Board.MoveTask inserts for targetIndex into a list of n ids.
func landingIndex(targetIndex, n int) int {
	if targetIndex < 0 || targetIndex > n {
		return n
	}
	return targetIndex
}

// UndoLast inverts the most recent move. An empty stack, or a record whose task is no longer in
// the destination column, is consumed without changing the board.
func (s *Service) UndoLast(ctx context.Context) (domain.MoveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.undo.Peek()
	if !ok {
		return domain.MoveRecord{}, false
	}
	to, ok := s.board.Column(rec.ToColumnID)
	if !ok || !to.Contains(rec.TaskID) {
		s.undo.Pop()
		return rec, false
	}
	rec, ok = s.undo.UndoLast(&s.board)
	if ok {
		s.saveLocked(ctx)
	}
	return rec, ok
}

// CanUndo reports whether an undo record is pending.
func (s *Service) CanUndo() bool {
	return s.undo.Len() > 0
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	ColumnID    string
	Title       string
	Description string
	Labels      []string
	DueDate     *time.Time
}

// CreateTask adds a task to the end of a column, the first column when none is given.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	columnID := strings.TrimSpace(in.ColumnID)
	if columnID == "" {
		if len(s.board.Columns) == 0 {
			return domain.Task{}, ErrNoColumns
		}
		columnID = s.board.Columns[0].ID
	}
	if s.board.ColumnIndex(columnID) < 0 {
		return domain.Task{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Labels:      in.Labels,
		DueDate:     in.DueDate,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.board.AddTask(task, columnID); err != nil {
		return domain.Task{}, err
	}
	s.saveLocked(ctx)
	return task, nil
}

// UpdateTaskInput holds input values for update task operations.
type UpdateTaskInput struct {
	TaskID      string
	Title       string
	Description string
	Labels      []string
	DueDate     *time.Time
	Done        bool
}

// UpdateTask replaces the editable fields of a task.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, err := s.taskLocked(in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.UpdateDetails(in.Title, in.Description, in.Labels, in.DueDate, in.Done); err != nil {
		return domain.Task{}, err
	}
	if err := s.board.PutTask(task); err != nil {
		return domain.Task{}, err
	}
	s.saveLocked(ctx)
	return task, nil
}

// ToggleDone flips the completion flag of a task.
func (s *Service) ToggleDone(ctx context.Context, taskID string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, err := s.taskLocked(taskID)
	if err != nil {
		return domain.Task{}, err
	}
	task.Done = !task.Done
	if err := s.board.PutTask(task); err != nil {
		return domain.Task{}, err
	}
	s.saveLocked(ctx)
	return task, nil
}

// DeleteTask removes a task from the board and forgets its undo records.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.board.RemoveTask(taskID) {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	s.undo.Forget(taskID)
	s.saveLocked(ctx)
	return nil
}

// AddComment appends a comment to a task thread.
func (s *Service) AddComment(ctx context.Context, taskID, text string) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, err := s.taskLocked(taskID)
	if err != nil {
		return domain.Comment{}, err
	}
	comment, err := domain.NewComment(s.idGen(), text, s.author, s.clock())
	if err != nil {
		return domain.Comment{}, err
	}
	task.AddComment(comment)
	if err := s.board.PutTask(task); err != nil {
		return domain.Comment{}, err
	}
	s.saveLocked(ctx)
	return comment, nil
}

// CreateColumn appends a column. Its id is derived from the title and made unique.
func (s *Service) CreateColumn(ctx context.Context, title, icon string) (domain.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.uniqueColumnIDLocked(title)
	column, err := domain.NewColumn(id, title, icon, s.columnWidth, s.minColumnWidth)
	if err != nil {
		return domain.Column{}, err
	}
	if err := s.board.AddColumn(column); err != nil {
		return domain.Column{}, err
	}
	s.saveLocked(ctx)
	return column, nil
}

// RenameColumn changes a column title.
func (s *Service) RenameColumn(ctx context.Context, columnID, title string) (domain.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.board.ColumnIndex(columnID)
	if idx < 0 {
		return domain.Column{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	if err := s.board.Columns[idx].Rename(title); err != nil {
		return domain.Column{}, err
	}
	s.saveLocked(ctx)
	return s.board.Columns[idx], nil
}

// ResizeColumn sets a column width, clamped to the minimum width.
func (s *Service) ResizeColumn(ctx context.Context, columnID string, width int) (domain.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.board.ColumnIndex(columnID)
	if idx < 0 {
		return domain.Column{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	s.board.Columns[idx].Resize(width, s.minColumnWidth)
	s.saveLocked(ctx)
	return s.board.Columns[idx], nil
}

// MoveColumn reorders a column.
func (s *Service) MoveColumn(ctx context.Context, columnID string, targetIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.board.MoveColumn(columnID, targetIndex) {
		return false
	}
	s.saveLocked(ctx)
	return true
}

// DeleteColumn removes a column together with its tasks.
func (s *Service) DeleteColumn(ctx context.Context, columnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed, ok := s.board.RemoveColumn(columnID)
	if !ok {
		return fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	for _, id := range removed.TaskIDs {
		s.undo.Forget(id)
	}
	s.saveLocked(ctx)
	return nil
}

// Export returns the board as an indented JSON document.
func (s *Service) Export() ([]byte, error) {
	return store.Export(s.Board())
}

// Import replaces the whole board with a document. A malformed document leaves the board
// untouched and returns ErrInvalidImport.
func (s *Service) Import(ctx context.Context, data []byte) (domain.Board, error) {
	b, err := store.Decode(data)
	if err != nil {
		return domain.Board{}, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	b.ClampColumnWidths(s.minColumnWidth)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = b
	s.undo.Clear()
	s.saveLocked(ctx)
	return s.board.Clone(), nil
}

// Persist writes the current board without broadcasting. Used by the autosave loop.
func (s *Service) Persist(ctx context.Context) bool {
	if s.store == nil {
		return false
	}
	return s.store.Persist(ctx, s.Board())
}

// adoptExternal replaces the board wholesale with a snapshot from another instance.
func (s *Service) adoptExternal(b domain.Board) {
	b.Normalize()
	b.ClampColumnWidths(s.minColumnWidth)
	s.mu.Lock()
	s.board = b
	s.mu.Unlock()
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Service) saveLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.store.Save(ctx, s.board.Clone())
}

func (s *Service) taskLocked(taskID string) (domain.Task, error) {
	task, ok := s.board.Task(taskID)
	if !ok {
		return domain.Task{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	task.Labels = slices.Clone(task.Labels)
	task.Comments = slices.Clone(task.Comments)
	return task, nil
}

func (s *Service) uniqueColumnIDLocked(title string) string {
	base := normalizeColumnID(title)
	if base == "" {
		base = "col"
	}
	id := base
	for n := 2; s.board.ColumnIndex(id) >= 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

// sanitizeColumnTemplates handles sanitize column templates.
func sanitizeColumnTemplates(in []ColumnTemplate) []ColumnTemplate {
	out := make([]ColumnTemplate, 0, len(in))
	seen := map[string]struct{}{}
	for _, tpl := range in {
		tpl.Title = strings.TrimSpace(tpl.Title)
		tpl.ID = strings.TrimSpace(tpl.ID)
		if tpl.Title == "" {
			continue
		}
		if tpl.ID == "" {
			tpl.ID = normalizeColumnID(tpl.Title)
		}
		if _, ok := seen[tpl.ID]; ok {
			continue
		}
		seen[tpl.ID] = struct{}{}
		out = append(out, tpl)
	}
	return out
}

// normalizeColumnID turns a title into a lowercase dash-separated id.
func normalizeColumnID(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ""
	}
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
