package tui

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/kanwow/internal/app"
	"github.com/evanschultz/kanwow/internal/domain"
)

// boardStyles holds the styles derived from the active theme.
type boardStyles struct {
	accent  color.Color
	text    color.Color
	muted   color.Color
	border  color.Color
	card    color.Color
	overdue color.Color
	done    color.Color
	label   color.Color

	title    lipgloss.Style
	colTitle lipgloss.Style
	mutedTxt lipgloss.Style
	selected lipgloss.Style
	doneTxt  lipgloss.Style
	labelTxt lipgloss.Style
	overdueT lipgloss.Style
	status   lipgloss.Style
}

// newBoardStyles derives styles from theme.
func newBoardStyles(theme Theme) boardStyles {
	def := DefaultTheme()
	s := boardStyles{
		accent:  themeColor(theme.Accent, def.Accent),
		text:    themeColor(theme.Text, def.Text),
		muted:   themeColor(theme.Muted, def.Muted),
		border:  themeColor(theme.Border, def.Border),
		card:    themeColor(theme.Card, def.Card),
		overdue: themeColor(theme.Overdue, def.Overdue),
		done:    themeColor(theme.Done, def.Done),
		label:   themeColor(theme.Label, def.Label),
	}
	s.title = lipgloss.NewStyle().Bold(true).Foreground(s.accent)
	s.colTitle = lipgloss.NewStyle().Bold(true).Foreground(s.text)
	s.mutedTxt = lipgloss.NewStyle().Foreground(s.muted)
	s.selected = lipgloss.NewStyle().Bold(true).Foreground(s.accent)
	s.doneTxt = lipgloss.NewStyle().Foreground(s.muted).Strikethrough(true)
	s.labelTxt = lipgloss.NewStyle().Foreground(s.label)
	s.overdueT = lipgloss.NewStyle().Bold(true).Foreground(s.overdue)
	s.status = lipgloss.NewStyle().Foreground(s.muted)
	return s
}

// View handles view.
func (m Model) View() tea.View {
	view := tea.NewView(m.render())
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// render draws the full screen as a string.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	st := newBoardStyles(m.theme)
	now := time.Now()
	l := m.layout()
	floating := m.floatingCards(l, now)

	sections := []string{m.renderHeader(st), ""}
	if len(l.columns) == 0 {
		empty := []string{
			"No columns yet.",
			"Press " + m.keys.addColumn.Help().Key + " to create one.",
		}
		sections = append(sections, st.mutedTxt.Render(strings.Join(empty, "\n")))
	} else {
		columnViews := make([]string, 0, len(l.columns)*2)
		for idx, box := range l.columns {
			if idx > 0 {
				columnViews = append(columnViews, strings.Repeat(" ", columnGap))
			}
			columnViews = append(columnViews, m.renderColumn(box, st, floating))
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, columnViews...))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(st.muted).
		BorderTop(true).
		BorderForeground(st.border).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
	footer := []string{m.renderStatusLine(st), m.renderSnackbar(st), helpLine}

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-footerRows))
	}
	fullContent := content + "\n" + strings.Join(footer, "\n")

	canvasHeight := lipgloss.Height(fullContent)
	if m.height > 0 {
		canvasHeight = m.height
	}
	if layers := m.cardLayers(l, st, floating, now); len(layers) > 0 {
		fullContent = composeLayers(fullContent, max(1, m.width), max(1, canvasHeight), layers)
	}

	overlay := m.renderModeOverlay(st, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(st, m.width-8)
	}
	if overlay != "" {
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, canvasHeight))
	}
	return fullContent
}

// renderHeader renders the title row with the active view options.
func (m Model) renderHeader(st boardStyles) string {
	header := st.title.Render("kanwow") + "  " + fmt.Sprintf("%d tasks", len(m.board.Tasks))
	if m.view.Sort != "" && m.view.Sort != app.SortManual {
		header += st.status.Render("  sort: " + string(m.view.Sort))
	}
	if len(m.view.Labels) > 0 {
		header += st.status.Render("  labels: " + strings.Join(m.view.Labels, ","))
	}
	if m.view.Search != "" {
		header += st.status.Render("  search: " + truncate(m.view.Search, 32))
	}
	if m.gesture.Dragging() {
		if task, ok := m.board.Task(m.gesture.TaskID()); ok {
			header += st.status.Render("  dragging: " + truncate(task.Title, 32))
		}
	}
	return header
}

// renderStatusLine renders the status text and due-date summary.
func (m Model) renderStatusLine(st boardStyles) string {
	line := st.status.Render(m.status)
	sum := app.SummarizeDue(m.board, m.now(), dueSoonWindow)
	parts := []string{}
	if sum.Overdue > 0 {
		parts = append(parts, st.overdueT.Render(fmt.Sprintf("%d overdue", sum.Overdue)))
	}
	if sum.DueToday > 0 {
		parts = append(parts, fmt.Sprintf("%d due today", sum.DueToday))
	}
	if sum.DueSoon > 0 {
		parts = append(parts, fmt.Sprintf("%d due soon", sum.DueSoon))
	}
	if len(parts) > 0 {
		line += st.status.Render("  •  ") + strings.Join(parts, st.status.Render(" • "))
	}
	return line
}

// renderSnackbar renders the undo prompt shown after a move.
func (m Model) renderSnackbar(st boardStyles) string {
	if m.snack == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(st.text).
		Background(st.card).
		Bold(true).
		Render(fmt.Sprintf(" %s · undo (%s) ", m.snack, m.keys.undo.Help().Key))
}

// renderColumn renders one column box. Floating and dragged cards leave an empty slot.
func (m Model) renderColumn(box columnBox, st boardStyles, floating map[string]bool) string {
	col, _ := m.board.Column(box.ID)
	selected := box.Index == m.selectedColumn

	title := col.Title
	if m.features.Icons && col.Icon != "" {
		title = col.Icon + " " + title
	}
	count := fmt.Sprintf(" (%d)", len(box.Tasks))
	if m.view.Active() {
		count = fmt.Sprintf(" (%d/%d)", len(box.Tasks), len(col.TaskIDs))
	}
	titleStyle := st.colTitle
	if selected {
		titleStyle = st.selected
	}
	lines := []string{
		padCell(titleStyle.Render(truncate(title, max(1, box.Inner-len(count)))+count), box.Inner),
		lipgloss.NewStyle().Foreground(st.border).Render(strings.Repeat("─", box.Inner)),
	}

	dragging := ""
	if m.gesture.Dragging() {
		dragging = m.gesture.TaskID()
	}
	if len(box.Tasks) == 0 {
		lines = append(lines, padCell(st.mutedTxt.Render("(empty)"), box.Inner))
	}
	for slot := 0; slot < box.Slots; slot++ {
		idx := box.Scroll + slot
		if idx >= len(box.Tasks) {
			break
		}
		task := box.Tasks[idx]
		switch {
		case task.ID == dragging:
			placeholder := st.mutedTxt.Render(strings.Repeat("┄", box.Inner))
			lines = append(lines, placeholder, placeholder)
		case floating[task.ID]:
			lines = append(lines, padCell("", box.Inner), padCell("", box.Inner))
		default:
			cardSelected := selected && idx == m.selectedTask && dragging == ""
			lines = append(lines, m.renderCardLines(task, box.Inner, cardSelected, st)...)
		}
		if slot < box.Slots-1 {
			lines = append(lines, padCell("", box.Inner))
		}
	}
	if hidden := len(box.Tasks) - box.Scroll - box.Slots; hidden > 0 {
		lines = append(lines, padCell(st.mutedTxt.Render(fmt.Sprintf("↓ %d more", hidden)), box.Inner))
	}

	inner := box.H - 2
	content := fitLines(strings.Join(lines, "\n"), inner)
	borderColor := st.border
	if selected {
		borderColor = st.accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(padLines(content, box.Inner))
}

// renderCardLines renders the title and metadata rows of a card.
func (m Model) renderCardLines(task domain.Task, width int, selected bool, st boardStyles) []string {
	marker := " "
	if selected {
		marker = st.selected.Render("▌")
	}
	title := truncate(task.Title, max(1, width-4))
	switch {
	case task.Done:
		title = lipgloss.NewStyle().Foreground(st.done).Render("✓ ") + st.doneTxt.Render(title)
	case selected:
		title = st.selected.Render(title)
	default:
		title = lipgloss.NewStyle().Foreground(st.text).Render(title)
	}
	return []string{
		padCell(marker+" "+title, width),
		padCell(marker+" "+m.cardMeta(task, st), width),
	}
}

// cardMeta summarizes labels, due date, and comments for a card.
func (m Model) cardMeta(task domain.Task, st boardStyles) string {
	parts := []string{}
	if task.DueDate != nil {
		due := "due " + task.DueDate.Format("Jan 2")
		if !task.Done && task.IsOverdue(m.now()) {
			parts = append(parts, st.overdueT.Render(due))
		} else {
			parts = append(parts, st.mutedTxt.Render(due))
		}
	}
	if summary := summarizeLabels(task.Labels, 2); summary != "" {
		parts = append(parts, st.labelTxt.Render(summary))
	}
	if n := len(task.Comments); n > 0 {
		parts = append(parts, st.mutedTxt.Render(fmt.Sprintf("✎%d", n)))
	}
	return strings.Join(parts, " ")
}

// floatingCards returns the cards drawn off their slot by the current FLIP frame.
func (m Model) floatingCards(l boardLayout, now time.Time) map[string]bool {
	out := map[string]bool{}
	if !m.animating {
		return out
	}
	for _, col := range l.columns {
		for idx, card := range col.Cards {
			if idx < col.Scroll || idx >= col.Scroll+col.Slots {
				continue
			}
			if off, ok := m.animator.Offset(card.ID, now); ok && (math.Round(off.X) != 0 || math.Round(off.Y) != 0) {
				out[card.ID] = true
			}
		}
	}
	return out
}

// cardLayers builds canvas layers for animated cards, the drag ghost, and the drop indicator.
func (m Model) cardLayers(l boardLayout, st boardStyles, floating map[string]bool, now time.Time) []*lipgloss.Layer {
	layers := []*lipgloss.Layer{}
	for _, col := range l.columns {
		for idx, card := range col.Cards {
			if !floating[card.ID] {
				continue
			}
			off, _ := m.animator.Offset(card.ID, now)
			at := card.Rect.Translate(off.X, off.Y)
			x := int(math.Round(at.X))
			y := int(math.Round(at.Y))
			selected := col.Index == m.selectedColumn && idx == m.selectedTask
			body := strings.Join(m.renderCardLines(col.Tasks[idx], col.Inner, selected, st), "\n")
			layers = append(layers, lipgloss.NewLayer(body).X(max(0, x)).Y(max(0, y)).Z(5))
		}
	}
	if !m.gesture.Dragging() {
		return layers
	}
	if target, ok := m.gesture.Preview(); ok {
		if box, found := l.column(target.ColumnID); found {
			if y, visible := dropIndicatorRow(box, m.gesture.TaskID(), target.Index); visible {
				line := lipgloss.NewStyle().Foreground(st.accent).Render(strings.Repeat("━", box.Inner))
				layers = append(layers, lipgloss.NewLayer(line).X(box.X+2).Y(y).Z(6))
			}
		}
	}
	if task, ok := m.board.Task(m.gesture.TaskID()); ok {
		p := m.gesture.Pointer()
		grab := m.gesture.GrabOffset()
		width := columnCells(0, m.minColumnWidth) - columnChrome
		if box, found := l.column(m.gesture.OriginColumn()); found {
			width = box.Inner
		}
		ghost := lipgloss.NewStyle().
			Foreground(st.text).
			Background(st.card).
			Bold(true).
			Render(padCell(" "+truncate(task.Title, max(1, width-2)), width) + "\n" + padCell(" "+strings.Join(task.Labels, " "), width))
		x := int(math.Floor(p.X - grab.X))
		y := int(math.Floor(p.Y - grab.Y))
		layers = append(layers, lipgloss.NewLayer(ghost).X(max(0, x)).Y(max(0, y)).Z(8))
	}
	return layers
}

// dropIndicatorRow returns the spacer row where a card dropped at index would land.
func dropIndicatorRow(box columnBox, draggingID string, index int) (int, bool) {
	shown := make([]int, 0, len(box.Cards))
	for idx, card := range box.Cards {
		if card.ID != draggingID {
			shown = append(shown, idx)
		}
	}
	var y int
	switch {
	case len(shown) == 0:
		y = box.cardsTop()
	case index < len(shown):
		y = int(box.Cards[shown[index]].Rect.Y) - 1
	default:
		y = int(box.Cards[shown[len(shown)-1]].Rect.Y) + cardHeight
	}
	return y, y >= box.cardsTop()-1 && y < box.Y+box.H-1
}

// renderModeOverlay renders the modal for the active input mode.
func (m Model) renderModeOverlay(st boardStyles, maxWidth int) string {
	if m.mode == modeNone {
		return ""
	}
	width := clamp(maxWidth, 24, 96)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(width)
	}
	titleStyle := st.title
	hintStyle := st.mutedTxt

	switch m.mode {
	case modeTaskInfo:
		task, ok := m.board.Task(m.infoTaskID)
		if !ok {
			return ""
		}
		return boxStyle.Render(strings.Join(m.taskInfoLines(task, st, width-4), "\n"))

	case modeConfirmDelete:
		what := "Delete task?"
		detail := m.confirm.label
		if m.confirm.kind == "column" {
			what = "Delete column?"
			col, _ := m.board.Column(m.confirm.id)
			detail = fmt.Sprintf("%s and its %d tasks", m.confirm.label, len(col.TaskIDs))
		}
		lines := []string{
			titleStyle.Render(what),
			truncate(detail, max(8, width-4)),
			"",
			hintStyle.Render("y/enter confirm • n/esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeLabelFilter:
		lines := []string{titleStyle.Render("Filter by Label")}
		labels := app.Labels(m.board)
		if len(labels) == 0 {
			lines = append(lines, hintStyle.Render("(no labels on this board)"))
		}
		for idx, label := range labels {
			check := " "
			for _, active := range m.view.Labels {
				if active == label {
					check = "x"
				}
			}
			item := fmt.Sprintf("[%s] %s", check, label)
			if idx == clamp(m.labelPickerIndex, 0, len(labels)-1) {
				item = st.selected.Render("› " + item)
			} else {
				item = "  " + item
			}
			lines = append(lines, item)
		}
		lines = append(lines, "", hintStyle.Render("j/k navigate • space toggle • enter/esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeSearch:
		in := m.searchInput
		in.SetWidth(max(18, width-8))
		matches := 0
		for _, col := range m.board.Columns {
			matches += len(app.VisibleTasks(m.board, col.ID, m.view))
		}
		lines := []string{
			titleStyle.Render("Search"),
			in.View(),
			hintStyle.Render(fmt.Sprintf("%d matching tasks", matches)),
			hintStyle.Render("enter keep filter • esc clear"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeAddComment:
		task, _ := m.board.Task(m.infoTaskID)
		in := m.commentInput
		in.SetWidth(max(18, width-8))
		lines := []string{
			titleStyle.Render("Add Comment"),
			hintStyle.Render(truncate(task.Title, max(8, width-4))),
			in.View(),
			hintStyle.Render("enter save • esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeAddTask, modeEditTask, modeAddColumn, modeRenameColumn:
		title := "New Task"
		fields := taskFormFields
		switch m.mode {
		case modeEditTask:
			title = "Edit Task"
		case modeAddColumn:
			title = "New Column"
			fields = []string{"title", "icon"}
		case modeRenameColumn:
			title = "Rename Column"
			fields = []string{"title"}
		}
		lines := []string{titleStyle.Render(title)}
		fieldWidth := max(18, width-20)
		for i, in := range m.formInputs {
			label := fmt.Sprintf("%d.", i+1)
			if i < len(fields) {
				label = fields[i]
			}
			labelStyle := st.mutedTxt
			if i == m.formFocus {
				labelStyle = st.selected
			}
			in.SetWidth(fieldWidth)
			lines = append(lines, labelStyle.Render(fmt.Sprintf("%-12s", label+":"))+" "+in.View())
		}
		lines = append(lines, "", hintStyle.Render("enter save • esc cancel • tab next field"))
		return boxStyle.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// taskInfoLines renders the task detail modal body.
func (m Model) taskInfoLines(task domain.Task, st boardStyles, width int) []string {
	lines := []string{st.title.Render(task.Title)}
	meta := []string{}
	if colID, ok := m.board.ColumnOf(task.ID); ok {
		col, _ := m.board.Column(colID)
		meta = append(meta, "column: "+col.Title)
	}
	if task.Done {
		meta = append(meta, "done")
	}
	if task.DueDate != nil {
		due := "due: " + task.DueDate.Format("2006-01-02")
		if !task.Done && task.IsOverdue(m.now()) {
			due = st.overdueT.Render(due + " (overdue)")
		}
		meta = append(meta, due)
	}
	lines = append(lines, st.mutedTxt.Render(strings.Join(meta, " • ")))
	if len(task.Labels) > 0 {
		lines = append(lines, st.labelTxt.Render("#"+strings.Join(task.Labels, " #")))
	}
	lines = append(lines, st.mutedTxt.Render("created "+task.CreatedAt.Local().Format("2006-01-02 15:04")), "")

	desc := strings.TrimSpace(task.Description)
	switch {
	case desc == "":
		lines = append(lines, st.mutedTxt.Render("(no description)"))
	case m.features.MarkdownPreview:
		lines = append(lines, m.markdown.render(desc, width, m.theme.Name))
	default:
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(desc))
	}

	lines = append(lines, "", st.title.Render(fmt.Sprintf("Comments (%d)", len(task.Comments))))
	for _, c := range task.Comments {
		who := c.Author
		if who == "" {
			who = "anonymous"
		}
		lines = append(lines,
			st.mutedTxt.Render(who+" · "+c.Timestamp.Local().Format("2006-01-02 15:04")),
			lipgloss.NewStyle().Width(width).Render(c.Text),
		)
	}
	lines = append(lines, "", st.mutedTxt.Render("e edit • c comment • x toggle done • y copy • esc close"))
	return lines
}

// renderHelpOverlay renders the expanded key reference.
func (m Model) renderHelpOverlay(st boardStyles, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	workflow := []string{
		st.title.Render("Workflows"),
		"1. drag a card with the mouse; release over a column to drop, esc cancels",
		"2. [ ] move across columns • J/K reorder • " + m.keys.undo.Help().Key + " undoes the last move",
		"3. n new task • e edit • enter details with comments • x done • d delete",
		"4. / search • f label filter • s cycle sort • esc clears filters",
		"5. C new column • R rename • X delete • < > resize • { } reorder",
	}
	lines := []string{
		st.title.Render("KANWOW Help"),
		st.mutedTxt.Render("board keys and mouse gestures"),
		"",
		hb.View(m.keys),
		"",
		st.mutedTxt.Render(strings.Join(workflow, "\n")),
		st.mutedTxt.Render("press ? or esc to close"),
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.border).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// composeLayers draws layers above base on a canvas.
func composeLayers(base string, width, height int, layers []*lipgloss.Layer) string {
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	for _, layer := range layers {
		canvas.Compose(layer)
	}
	return canvas.Render()
}

// padCell truncates or pads s to exactly width cells.
func padCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	if gap := width - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// padLines pads every line of s to width cells.
func padLines(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padCell(line, width)
	}
	return strings.Join(lines, "\n")
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

// summarizeLabels summarizes labels.
func summarizeLabels(labels []string, maxLabels int) string {
	if len(labels) == 0 {
		return ""
	}
	if maxLabels <= 0 {
		maxLabels = 1
	}
	visible := labels
	extra := 0
	if len(labels) > maxLabels {
		visible = labels[:maxLabels]
		extra = len(labels) - maxLabels
	}
	joined := "#" + strings.Join(visible, " #")
	if extra > 0 {
		joined += fmt.Sprintf(" +%d", extra)
	}
	return joined
}
