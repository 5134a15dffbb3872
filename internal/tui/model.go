package tui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/kanwow/internal/app"
	"github.com/evanschultz/kanwow/internal/domain"
	"github.com/evanschultz/kanwow/internal/dragdrop"
	"github.com/evanschultz/kanwow/internal/flip"
)

// Service represents service data used by this package.
type Service interface {
	Load(context.Context) domain.Board
	Board() domain.Board
	ExternalUpdates() <-chan struct{}
	MoveTask(context.Context, app.MoveTaskInput) (domain.MoveRecord, bool)
	UndoLast(context.Context) (domain.MoveRecord, bool)
	CanUndo() bool
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	UpdateTask(context.Context, app.UpdateTaskInput) (domain.Task, error)
	ToggleDone(context.Context, string) (domain.Task, error)
	DeleteTask(context.Context, string) error
	AddComment(context.Context, string, string) (domain.Comment, error)
	CreateColumn(context.Context, string, string) (domain.Column, error)
	RenameColumn(context.Context, string, string) (domain.Column, error)
	ResizeColumn(context.Context, string, int) (domain.Column, error)
	MoveColumn(context.Context, string, int) bool
	DeleteColumn(context.Context, string) error
	Export() ([]byte, error)
}

// inputMode identifies the active modal.
type inputMode int

// modeNone and related constants define package values.
const (
	modeNone inputMode = iota
	modeAddTask
	modeEditTask
	modeTaskInfo
	modeAddComment
	modeSearch
	modeLabelFilter
	modeAddColumn
	modeRenameColumn
	modeConfirmDelete
)

const (
	snackbarDuration = 4 * time.Second
	dueSoonWindow    = 48 * time.Hour
)

// task form field indexes.
const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldLabels
	taskFieldDue
)

var taskFormFields = []string{"title", "description", "labels", "due"}

// loadedMsg carries the board read at startup or on reload.
type loadedMsg struct {
	board domain.Board
}

// boardMsg carries the board after a service mutation.
type boardMsg struct {
	board         domain.Board
	err           error
	status        string
	animate       bool
	snack         bool
	clearSnack    bool
	focusTaskID   string
	focusColumnID string
}

// statusMsg reports the outcome of a side effect that leaves the board untouched.
type statusMsg struct {
	status string
}

// themeSavedMsg reports the outcome of persisting the theme choice.
type themeSavedMsg struct {
	name string
	err  error
}

// externalUpdateMsg signals that another instance replaced the board.
type externalUpdateMsg struct{}

// frameMsg drives FLIP playback.
type frameMsg time.Time

// snackExpiredMsg hides the undo snackbar unless a newer one replaced it.
type snackExpiredMsg struct {
	seq int
}

// confirmAction holds the pending destructive action.
type confirmAction struct {
	kind  string
	id    string
	label string
}

// Model represents model data used by this package.
type Model struct {
	svc    Service
	board  domain.Board
	status string
	help   help.Model
	keys   keyMap
	mode   inputMode
	width  int
	height int
	ready  bool

	selectedColumn int
	selectedTask   int

	view             app.ViewOptions
	labelPickerIndex int

	theme          Theme
	themes         []Theme
	saveTheme      SaveThemeFunc
	features       FeatureConfig
	animation      AnimationConfig
	minColumnWidth int
	export         ExportFunc
	clipboard      ClipboardFunc
	now            func() time.Time

	gesture   *dragdrop.Gesture
	dragMoved bool
	animator  *flip.Animator
	animating bool
	markdown  *markdownRenderer

	snack    string
	snackSeq int

	formInputs    []textinput.Model
	formFocus     int
	editingTaskID string
	searchInput   textinput.Model
	commentInput  textinput.Model
	infoTaskID    string
	commentBack   inputMode
	confirm       confirmAction
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "title, description, labels"
	searchInput.CharLimit = 120
	commentInput := textinput.New()
	commentInput.Prompt = "> "
	commentInput.Placeholder = "write a comment"
	commentInput.CharLimit = 2000
	m := Model{
		svc:            svc,
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		view:           app.ViewOptions{Sort: app.SortManual},
		theme:          DefaultTheme(),
		themes:         []Theme{DefaultTheme()},
		features:       DefaultFeatureConfig(),
		animation:      DefaultAnimationConfig(),
		minColumnWidth: domain.DefaultMinColumnWidth,
		now:            time.Now,
		gesture:        &dragdrop.Gesture{},
		markdown:       &markdownRenderer{},
		searchInput:    searchInput,
		commentInput:   commentInput,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	duration := m.animation.Duration
	if !m.animation.Enabled {
		duration = 0
	}
	m.animator = flip.New(flip.WithDuration(duration))
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadData, m.waitForExternal())
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.board = msg.board
		m.clampSelections()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case boardMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		cmd := m.applyBoard(msg.board, msg.animate)
		if msg.focusColumnID != "" {
			m.focusColumnByID(msg.focusColumnID)
		}
		if msg.focusTaskID != "" {
			m.focusTaskByID(msg.focusTaskID)
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.clearSnack {
			m.snack = ""
		}
		if msg.snack {
			m.snackSeq++
			m.snack = "Task moved"
			seq := m.snackSeq
			return m, tea.Batch(cmd, tea.Tick(snackbarDuration, func(time.Time) tea.Msg {
				return snackExpiredMsg{seq: seq}
			}))
		}
		return m, cmd

	case statusMsg:
		m.status = msg.status
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.status = "theme " + msg.name + " (not saved: " + msg.err.Error() + ")"
			return m, nil
		}
		m.status = "theme " + msg.name
		return m, nil

	case externalUpdateMsg:
		cmd := m.applyBoard(m.svc.Board(), true)
		if !m.gesture.Dragging() {
			m.status = "board updated from another instance"
		}
		return m, tea.Batch(cmd, m.waitForExternal())

	case frameMsg:
		if m.animator.Active(time.Time(msg)) {
			return m, m.frameTick()
		}
		m.animating = false
		m.animator.Stop()
		return m, nil

	case snackExpiredMsg:
		if msg.seq == m.snackSeq {
			m.snack = ""
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// loadData loads the persisted board.
func (m Model) loadData() tea.Msg {
	return loadedMsg{board: m.svc.Load(context.Background())}
}

// waitForExternal blocks until another instance replaces the board.
func (m Model) waitForExternal() tea.Cmd {
	ch := m.svc.ExternalUpdates()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return externalUpdateMsg{}
	}
}

// frameTick schedules the next animation frame.
func (m Model) frameTick() tea.Cmd {
	fps := max(1, m.animation.FPS)
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// applyBoard swaps in a new board and, when requested, starts a FLIP cycle from the old card
// positions to the new ones.
func (m *Model) applyBoard(b domain.Board, animate bool) tea.Cmd {
	first := m.layout().snapshot()
	m.board = b
	m.clampSelections()
	if !animate || m.animator.Duration() <= 0 {
		return nil
	}
	m.animator.Transition(first, func() flip.Snapshot {
		return m.layout().snapshot()
	})
	if m.animating || !m.animator.Active(time.Now()) {
		return nil
	}
	m.animating = true
	return m.frameTick()
}

// handleNormalModeKey handles board navigation and actions.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggleHelp), msg.String() == "esc":
			m.help.ShowAll = false
		}
		return m, nil
	}
	if m.gesture.Dragging() && msg.String() == "esc" {
		m.gesture.Cancel()
		m.status = "drag cancelled"
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.board.Columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.selectedTask < len(m.currentColumnTasks())-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		if len(m.board.Columns) == 0 {
			m.status = "create a column first"
			return m, nil
		}
		return m, m.startTaskForm(nil)
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		m.status = "task info"
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startTaskForm(&task)
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirm = confirmAction{kind: "task", id: task.ID, label: task.Title}
		return m, nil
	case key.Matches(msg, m.keys.toggleDone):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.toggleDoneCmd(task.ID)
	case key.Matches(msg, m.keys.addComment):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startComment(task.ID, modeNone)
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedAcross(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedAcross(1)
	case key.Matches(msg, m.keys.moveTaskUp):
		return m.moveSelectedWithin(-1)
	case key.Matches(msg, m.keys.moveTaskDown):
		return m.moveSelectedWithin(1)
	case key.Matches(msg, m.keys.undo):
		return m, m.undoCmd()
	case key.Matches(msg, m.keys.search):
		return m, m.startSearch()
	case key.Matches(msg, m.keys.labelFilter):
		m.mode = modeLabelFilter
		m.labelPickerIndex = 0
		m.status = "label filter"
		return m, nil
	case key.Matches(msg, m.keys.clearFilters):
		if !m.view.Active() {
			return m, nil
		}
		m.view.Labels = nil
		m.view.Search = ""
		m.searchInput.SetValue("")
		m.clampSelections()
		m.status = "filters cleared"
		return m, nil
	case key.Matches(msg, m.keys.cycleSort):
		m.view.Sort = app.NextSortKey(m.view.Sort)
		m.clampSelections()
		m.status = "sort: " + string(m.view.Sort)
		return m, nil
	case key.Matches(msg, m.keys.yankTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.yankCmd(task)
	case key.Matches(msg, m.keys.exportBoard):
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.toggleTheme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.addColumn):
		return m, m.startColumnForm(nil)
	case key.Matches(msg, m.keys.renameColumn):
		col, ok := m.currentColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		return m, m.startColumnForm(&col)
	case key.Matches(msg, m.keys.deleteColumn):
		col, ok := m.currentColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirm = confirmAction{kind: "column", id: col.ID, label: col.Title}
		return m, nil
	case key.Matches(msg, m.keys.narrowColumn):
		return m, m.resizeColumnCmd(-widthStepPx)
	case key.Matches(msg, m.keys.widenColumn):
		return m, m.resizeColumnCmd(widthStepPx)
	case key.Matches(msg, m.keys.columnLeft):
		return m, m.moveColumnCmd(-1)
	case key.Matches(msg, m.keys.columnRight):
		return m, m.moveColumnCmd(1)
	default:
		return m, nil
	}
}

// handleInputModeKey handles keys while a modal is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeTaskInfo:
		task, ok := m.board.Task(m.infoTaskID)
		if !ok {
			m.closeModal("task info unavailable")
			return m, nil
		}
		switch {
		case msg.String() == "esc" || msg.String() == "i" || msg.String() == "q":
			m.closeModal("ready")
			return m, nil
		case key.Matches(msg, m.keys.editTask):
			return m, m.startTaskForm(&task)
		case key.Matches(msg, m.keys.addComment):
			return m, m.startComment(task.ID, modeTaskInfo)
		case key.Matches(msg, m.keys.toggleDone):
			return m, m.toggleDoneCmd(task.ID)
		case key.Matches(msg, m.keys.yankTask):
			return m, m.yankCmd(task)
		default:
			return m, nil
		}

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y", "enter":
			action := m.confirm
			m.closeModal("")
			if action.kind == "column" {
				return m, m.deleteColumnCmd(action.id, action.label)
			}
			return m, m.deleteTaskCmd(action.id)
		case "n", "N", "esc":
			m.closeModal("cancelled")
			return m, nil
		default:
			return m, nil
		}

	case modeLabelFilter:
		labels := app.Labels(m.board)
		switch msg.String() {
		case "esc", "enter":
			m.closeModal(m.filterStatus())
			return m, nil
		case "j", "down":
			if m.labelPickerIndex < len(labels)-1 {
				m.labelPickerIndex++
			}
			return m, nil
		case "k", "up":
			if m.labelPickerIndex > 0 {
				m.labelPickerIndex--
			}
			return m, nil
		case "space", " ", "x":
			if len(labels) == 0 {
				return m, nil
			}
			m.toggleLabelFilter(labels[clamp(m.labelPickerIndex, 0, len(labels)-1)])
			return m, nil
		default:
			return m, nil
		}

	case modeSearch:
		switch {
		case msg.String() == "esc":
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.view.Search = ""
			m.closeModal("search cleared")
			return m, nil
		case msg.String() == "enter":
			m.searchInput.Blur()
			m.closeModal(m.filterStatus())
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.view.Search = strings.TrimSpace(m.searchInput.Value())
			m.clampSelections()
			return m, cmd
		}

	case modeAddComment:
		switch msg.String() {
		case "esc":
			m.commentInput.Blur()
			m.returnFromComment("cancelled")
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.commentInput.Value())
			taskID := m.infoTaskID
			m.commentInput.Blur()
			m.returnFromComment("")
			if text == "" {
				m.status = "comment text required"
				return m, nil
			}
			return m, m.addCommentCmd(taskID, text)
		default:
			var cmd tea.Cmd
			m.commentInput, cmd = m.commentInput.Update(msg)
			return m, cmd
		}

	case modeAddTask, modeEditTask, modeAddColumn, modeRenameColumn:
		switch msg.String() {
		case "esc":
			m.closeModal("cancelled")
			return m, nil
		case "tab", "down":
			return m, m.focusFormField(m.formFocus + 1)
		case "shift+tab", "up":
			return m, m.focusFormField(m.formFocus - 1)
		case "enter":
			return m.submitForm()
		default:
			if len(m.formInputs) == 0 {
				return m, nil
			}
			var cmd tea.Cmd
			idx := clamp(m.formFocus, 0, len(m.formInputs)-1)
			m.formInputs[idx], cmd = m.formInputs[idx].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// closeModal returns to the board.
func (m *Model) closeModal(status string) {
	m.mode = modeNone
	m.formInputs = nil
	m.formFocus = 0
	m.editingTaskID = ""
	m.confirm = confirmAction{}
	if status != "" {
		m.status = status
	}
}

// returnFromComment goes back to task info when the comment was started there.
func (m *Model) returnFromComment(status string) {
	if m.commentBack == modeTaskInfo {
		m.mode = modeTaskInfo
		m.commentBack = modeNone
		if status != "" {
			m.status = status
		}
		return
	}
	m.closeModal(status)
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// startTaskForm opens the task form, prefilled when task is set.
func (m *Model) startTaskForm(task *domain.Task) tea.Cmd {
	m.formInputs = []textinput.Model{
		newModalInput("", "task title", "", 200),
		newModalInput("", "markdown description", "", 4000),
		newModalInput("", "comma separated", "", 300),
		newModalInput("", "YYYY-MM-DD or blank", "", 10),
	}
	m.mode = modeAddTask
	m.editingTaskID = ""
	m.status = "new task"
	if task != nil {
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
		m.formInputs[taskFieldTitle].SetValue(task.Title)
		m.formInputs[taskFieldDescription].SetValue(task.Description)
		m.formInputs[taskFieldLabels].SetValue(strings.Join(task.Labels, ","))
		if task.DueDate != nil {
			m.formInputs[taskFieldDue].SetValue(task.DueDate.Format("2006-01-02"))
		}
		for i := range m.formInputs {
			m.formInputs[i].CursorEnd()
		}
	}
	return m.focusFormField(taskFieldTitle)
}

// startColumnForm opens the column form, prefilled for a rename when col is set.
func (m *Model) startColumnForm(col *domain.Column) tea.Cmd {
	m.formInputs = []textinput.Model{
		newModalInput("", "column title", "", 80),
		newModalInput("", "icon (optional)", "", 8),
	}
	m.mode = modeAddColumn
	m.editingTaskID = ""
	m.status = "new column"
	if col != nil {
		m.mode = modeRenameColumn
		m.formInputs = m.formInputs[:1]
		m.formInputs[0].SetValue(col.Title)
		m.formInputs[0].CursorEnd()
		m.status = "rename column"
	}
	return m.focusFormField(0)
}

// startComment opens the comment input for taskID.
func (m *Model) startComment(taskID string, back inputMode) tea.Cmd {
	m.infoTaskID = taskID
	m.commentBack = back
	m.mode = modeAddComment
	m.commentInput.SetValue("")
	m.status = "add comment"
	return m.commentInput.Focus()
}

// startSearch opens the live search input.
func (m *Model) startSearch() tea.Cmd {
	m.mode = modeSearch
	m.searchInput.SetValue(m.view.Search)
	m.searchInput.CursorEnd()
	m.status = "search"
	return m.searchInput.Focus()
}

// focusFormField moves focus to idx, wrapping around.
func (m *Model) focusFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = (idx + len(m.formInputs)) % len(m.formInputs)
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	m.formFocus = idx
	return m.formInputs[idx].Focus()
}

// formValues returns trimmed form values in field order.
func (m Model) formValues() []string {
	out := make([]string, len(m.formInputs))
	for i, in := range m.formInputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

// submitForm applies the open task or column form.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	vals := m.formValues()
	mode := m.mode
	editingID := m.editingTaskID
	if len(vals) == 0 || vals[0] == "" {
		m.status = "title required"
		return m, nil
	}
	switch mode {
	case modeAddTask, modeEditTask:
		due, err := parseDueInput(vals[taskFieldDue])
		if err != nil {
			m.status = err.Error()
			return m, m.focusFormField(taskFieldDue)
		}
		labels := parseLabelsInput(vals[taskFieldLabels])
		m.closeModal("")
		if mode == modeEditTask {
			task, ok := m.board.Task(editingID)
			if !ok {
				m.status = "task not found"
				return m, nil
			}
			return m, m.updateTaskCmd(app.UpdateTaskInput{
				TaskID:      editingID,
				Title:       vals[taskFieldTitle],
				Description: vals[taskFieldDescription],
				Labels:      labels,
				DueDate:     due,
				Done:        task.Done,
			})
		}
		columnID := ""
		if col, ok := m.currentColumn(); ok {
			columnID = col.ID
		}
		return m, m.createTaskCmd(app.CreateTaskInput{
			ColumnID:    columnID,
			Title:       vals[taskFieldTitle],
			Description: vals[taskFieldDescription],
			Labels:      labels,
			DueDate:     due,
		})
	case modeAddColumn:
		icon := ""
		if len(vals) > 1 {
			icon = vals[1]
		}
		m.closeModal("")
		return m, m.createColumnCmd(vals[0], icon)
	case modeRenameColumn:
		col, ok := m.currentColumn()
		m.closeModal("")
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		return m, m.renameColumnCmd(col.ID, vals[0])
	}
	return m, nil
}

// parseDueInput parses a YYYY-MM-DD date. Blank clears it.
func parseDueInput(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return nil, nil
	}
	due, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, errors.New("due date must be YYYY-MM-DD")
	}
	return &due, nil
}

// parseLabelsInput splits comma separated labels.
func parseLabelsInput(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	return domain.NormalizeLabels(parts)
}

// toggleLabelFilter adds or removes label from the any-of filter.
func (m *Model) toggleLabelFilter(label string) {
	if idx := slices.Index(m.view.Labels, label); idx >= 0 {
		m.view.Labels = slices.Delete(slices.Clone(m.view.Labels), idx, idx+1)
	} else {
		m.view.Labels = append(slices.Clone(m.view.Labels), label)
	}
	m.clampSelections()
	m.status = m.filterStatus()
}

// filterStatus summarizes the active filters.
func (m Model) filterStatus() string {
	parts := []string{}
	if len(m.view.Labels) > 0 {
		parts = append(parts, "labels: "+strings.Join(m.view.Labels, ","))
	}
	if m.view.Search != "" {
		parts = append(parts, "search: "+m.view.Search)
	}
	if len(parts) == 0 {
		return "showing all tasks"
	}
	return strings.Join(parts, " • ")
}

// toggleTheme switches to the next theme and persists the choice.
func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	if len(m.themes) < 2 {
		m.status = "only one theme configured"
		return m, nil
	}
	idx := slices.IndexFunc(m.themes, func(t Theme) bool { return strings.EqualFold(t.Name, m.theme.Name) })
	m.theme = m.themes[(idx+1)%len(m.themes)]
	name := m.theme.Name
	if m.saveTheme == nil {
		m.status = "theme " + name
		return m, nil
	}
	save := m.saveTheme
	return m, func() tea.Msg {
		return themeSavedMsg{name: name, err: save(name)}
	}
}

// moveSelectedAcross moves the selected task to the end of the neighboring column.
func (m Model) moveSelectedAcross(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	target := m.selectedColumn + delta
	if target < 0 || target >= len(m.board.Columns) {
		m.status = "no column in that direction"
		return m, nil
	}
	from := m.board.Columns[m.selectedColumn]
	to := m.board.Columns[target]
	return m, m.moveTaskCmd(app.MoveTaskInput{
		TaskID:       task.ID,
		FromColumnID: from.ID,
		ToColumnID:   to.ID,
		TargetIndex:  len(to.TaskIDs),
	})
}

// moveSelectedWithin swaps the selected task past its visible neighbour. Cards hidden by a filter
// keep their relative order.
func (m Model) moveSelectedWithin(delta int) (tea.Model, tea.Cmd) {
	if m.view.Sort != app.SortManual {
		m.status = "reorder needs manual sort"
		return m, nil
	}
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	col := m.board.Columns[m.selectedColumn]
	visible := m.currentColumnTasks()
	cards := make([]dragdrop.CardBox, 0, len(visible))
	idx := -1
	for i, t := range visible {
		if t.ID == task.ID {
			idx = i
		}
		cards = append(cards, dragdrop.CardBox{ID: t.ID})
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(visible) {
		return m, nil
	}
	return m, m.moveTaskCmd(app.MoveTaskInput{
		TaskID:       task.ID,
		FromColumnID: col.ID,
		ToColumnID:   col.ID,
		TargetIndex:  columnDropIndex(col, cards, task.ID, target),
	})
}

// currentColumn returns the selected column.
func (m Model) currentColumn() (domain.Column, bool) {
	if len(m.board.Columns) == 0 {
		return domain.Column{}, false
	}
	return m.board.Columns[clamp(m.selectedColumn, 0, len(m.board.Columns)-1)], true
}

// currentColumnTasks returns the visible tasks of the selected column.
func (m Model) currentColumnTasks() []domain.Task {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return app.VisibleTasks(m.board, col.ID, m.view)
}

// selectedTaskInCurrentColumn returns the highlighted task.
func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	if len(m.board.Columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.board.Columns)-1)
	m.selectedTask = clamp(m.selectedTask, 0, max(0, len(m.currentColumnTasks())-1))
}

// focusTaskByID selects taskID when it is visible.
func (m *Model) focusTaskByID(taskID string) {
	for colIdx, col := range m.board.Columns {
		for taskIdx, task := range app.VisibleTasks(m.board, col.ID, m.view) {
			if task.ID == taskID {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return
			}
		}
	}
}

// focusColumnByID selects columnID.
func (m *Model) focusColumnByID(columnID string) {
	if idx := m.board.ColumnIndex(columnID); idx >= 0 {
		m.selectedColumn = idx
		m.clampSelections()
	}
}
