package tui

import (
	"github.com/evanschultz/kanwow/internal/app"
	"github.com/evanschultz/kanwow/internal/domain"
	"github.com/evanschultz/kanwow/internal/dragdrop"
	"github.com/evanschultz/kanwow/internal/flip"
)

// Board geometry is measured in terminal cells. Column widths are stored in pixels, one cell per pxPerCell.
const (
	pxPerCell      = 10
	widthStepPx    = 20
	headerRows     = 2
	footerRows     = 4
	columnChrome   = 4
	columnGap      = 1
	columnHeadRows = 2
	cardRows       = 3
	cardHeight     = 2
	fallbackHeight = 24
)

// columnBox describes where one column and its cards sit on screen.
type columnBox struct {
	ID     string
	Index  int
	X      int
	Y      int
	W      int
	H      int
	Inner  int
	Tasks  []domain.Task
	Scroll int
	Slots  int
	Cards  []dragdrop.CardBox
}

// cardsTop returns the first screen row used by cards.
func (c columnBox) cardsTop() int {
	return c.Y + 1 + columnHeadRows
}

// boardLayout is the hit-testing view of the rendered board.
type boardLayout struct {
	columns []columnBox
}

// ColumnAt returns the column under p.
func (l boardLayout) ColumnAt(p domain.Point) (string, bool) {
	for _, col := range l.columns {
		if p.X >= float64(col.X) && p.X < float64(col.X+col.W) && p.Y >= float64(col.Y) && p.Y < float64(col.Y+col.H) {
			return col.ID, true
		}
	}
	return "", false
}

// Cards returns every filtered card of a column, including ones scrolled out of view.
func (l boardLayout) Cards(columnID string) []dragdrop.CardBox {
	for _, col := range l.columns {
		if col.ID == columnID {
			return col.Cards
		}
	}
	return nil
}

// column returns the box for columnID.
func (l boardLayout) column(columnID string) (columnBox, bool) {
	for _, col := range l.columns {
		if col.ID == columnID {
			return col, true
		}
	}
	return columnBox{}, false
}

// cardAt returns the card and its column under p.
func (l boardLayout) cardAt(p domain.Point) (columnBox, int, bool) {
	for _, col := range l.columns {
		for idx, card := range col.Cards {
			if idx < col.Scroll || idx >= col.Scroll+col.Slots {
				continue
			}
			if card.Rect.Contains(p) {
				return col, idx, true
			}
		}
	}
	return columnBox{}, -1, false
}

// snapshot records every on-screen card rectangle for FLIP.
func (l boardLayout) snapshot() flip.Snapshot {
	snap := flip.Snapshot{}
	for _, col := range l.columns {
		for idx, card := range col.Cards {
			if idx < col.Scroll || idx >= col.Scroll+col.Slots {
				continue
			}
			snap[card.ID] = card.Rect
		}
	}
	return snap
}

// columnCells converts a stored pixel width to an outer cell width.
func columnCells(widthPx, minPx int) int {
	return max(domain.ClampWidth(widthPx, minPx)/pxPerCell, columnChrome+8)
}

// layout computes the board geometry for the current model state.
func (m Model) layout() boardLayout {
	height := m.height
	if height <= 0 {
		height = fallbackHeight
	}
	colHeight := max(2+columnHeadRows+cardRows, height-headerRows-footerRows)
	slots := max(1, (colHeight-2-columnHeadRows)/cardRows)

	cols := m.board.Columns
	first := m.firstVisibleColumn()
	out := boardLayout{columns: make([]columnBox, 0, len(cols))}
	x := 0
	for idx := first; idx < len(cols); idx++ {
		col := cols[idx]
		w := columnCells(col.Width, m.minColumnWidth)
		if m.width > 0 && x+w > m.width && idx > first {
			break
		}
		box := columnBox{
			ID:    col.ID,
			Index: idx,
			X:     x,
			Y:     headerRows,
			W:     w,
			H:     colHeight,
			Inner: w - columnChrome,
			Tasks: app.VisibleTasks(m.board, col.ID, m.view),
			Slots: slots,
		}
		if idx == m.selectedColumn && m.selectedTask >= slots {
			box.Scroll = m.selectedTask - slots + 1
		}
		box.Scroll = clamp(box.Scroll, 0, max(0, len(box.Tasks)-slots))
		box.Cards = make([]dragdrop.CardBox, 0, len(box.Tasks))
		for taskIdx, task := range box.Tasks {
			box.Cards = append(box.Cards, dragdrop.CardBox{
				ID: task.ID,
				Rect: domain.Rect{
					X: float64(x + 2),
					Y: float64(box.cardsTop() + (taskIdx-box.Scroll)*cardRows),
					W: float64(box.Inner),
					H: cardHeight,
				},
			})
		}
		out.columns = append(out.columns, box)
		x += w + columnGap
	}
	return out
}

// firstVisibleColumn scrolls the board horizontally so the selected column fits.
func (m Model) firstVisibleColumn() int {
	cols := m.board.Columns
	if m.width <= 0 || len(cols) == 0 {
		return 0
	}
	sel := clamp(m.selectedColumn, 0, len(cols)-1)
	first := 0
	for first < sel {
		used := 0
		for idx := first; idx <= sel; idx++ {
			used += columnCells(cols[idx].Width, m.minColumnWidth) + columnGap
		}
		if used <= m.width {
			break
		}
		first++
	}
	return first
}

// columnDropIndex maps a drop index among filtered cards onto the full column order with the
// dragged task removed. Hidden cards keep their relative positions.
func columnDropIndex(col domain.Column, visible []dragdrop.CardBox, draggingID string, visibleIndex int) int {
	full := make([]string, 0, len(col.TaskIDs))
	for _, id := range col.TaskIDs {
		if id != draggingID {
			full = append(full, id)
		}
	}
	shown := make([]string, 0, len(visible))
	for _, card := range visible {
		if card.ID != draggingID {
			shown = append(shown, card.ID)
		}
	}
	if len(shown) == 0 {
		return len(full)
	}
	if visibleIndex < len(shown) {
		for idx, id := range full {
			if id == shown[visibleIndex] {
				return idx
			}
		}
		return len(full)
	}
	last := shown[len(shown)-1]
	for idx, id := range full {
		if id == last {
			return idx + 1
		}
	}
	return len(full)
}
